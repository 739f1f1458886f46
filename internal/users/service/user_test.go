package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Developer-Square/Park254-Backend/internal/users/repository"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]*model.User
	err   error
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return u, nil
}

func TestGetByID(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*model.User{
		"u1": {ID: "u1", Name: "Wanjiku", Role: "user"},
	}}
	svc := NewUserService(repo)

	u, err := svc.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Wanjiku", u.Name)

	_, err = svc.GetByID(context.Background(), "missing")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	assert.Equal(t, "User not found", appErr.Message)

	repo.err = fmt.Errorf("%w: bad", repository.ErrInvalidID)
	_, err = svc.GetByID(context.Background(), "bad")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))

	repo.err = errors.New("boom")
	_, err = svc.GetByID(context.Background(), "u1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
}
