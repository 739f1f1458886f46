package service

import (
	"context"
	"fmt"
	"testing"

	vehicleserrors "github.com/Developer-Square/Park254-Backend/internal/vehicles/errors"
	"github.com/Developer-Square/Park254-Backend/internal/vehicles/validator"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock repository for testing
type mockVehicleRepository struct {
	vehicles    map[string]*model.Vehicle
	nextID      int
	queryFilter model.VehicleFilter
	queryPage   model.PageOptions
}

func (m *mockVehicleRepository) Create(_ context.Context, vehicle *model.Vehicle) error {
	m.nextID++
	vehicle.ID = fmt.Sprintf("65b7f0c2a1b2c3d4e5f6%04d", m.nextID)
	stored := *vehicle
	m.vehicles[vehicle.ID] = &stored
	return nil
}

func (m *mockVehicleRepository) FindByID(_ context.Context, id string) (*model.Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return nil, vehicleserrors.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (m *mockVehicleRepository) ExistsByPlate(_ context.Context, plate, excludeID string) (bool, error) {
	for id, v := range m.vehicles {
		if v.Plate == plate && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockVehicleRepository) Query(_ context.Context, filter model.VehicleFilter, page model.PageOptions) ([]*model.Vehicle, int64, error) {
	m.queryFilter, m.queryPage = filter, page
	if page.SortBy == "bogus" {
		return nil, 0, fmt.Errorf("%w: bogus", mongotx.ErrInvalidSort)
	}
	out := []*model.Vehicle{}
	for _, v := range m.vehicles {
		if filter.Owner == "" || v.Owner == filter.Owner {
			out = append(out, v)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockVehicleRepository) Update(_ context.Context, id string, update *model.VehicleUpdate) (*model.Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return nil, vehicleserrors.ErrNotFound
	}
	if update.Model != nil {
		v.Model = *update.Model
	}
	if update.Plate != nil {
		v.Plate = *update.Plate
	}
	if update.Owner != nil {
		v.Owner = *update.Owner
	}
	copied := *v
	return &copied, nil
}

func (m *mockVehicleRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.vehicles[id]; !ok {
		return vehicleserrors.ErrNotFound
	}
	delete(m.vehicles, id)
	return nil
}

type knownUsers map[string]bool

func (k knownUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if !k[id] {
		return nil, apperrors.NotFound("User")
	}
	return &model.User{ID: id}, nil
}

var (
	owner    = auth.Principal{UserID: "64b7f0c2a1b2c3d4e5f60101", Role: auth.RoleUser}
	stranger = auth.Principal{UserID: "64b7f0c2a1b2c3d4e5f60102", Role: auth.RoleUser}
	admin    = auth.Principal{UserID: "64b7f0c2a1b2c3d4e5f60301", Role: auth.RoleAdmin}
)

func newService() (*mockVehicleRepository, VehicleService) {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	repo := &mockVehicleRepository{vehicles: map[string]*model.Vehicle{}}
	users := knownUsers{owner.UserID: true, stranger.UserID: true, admin.UserID: true}
	return repo, NewVehicleService(repo, users, validator.NewVehicleValidator(log), &config.Config{Log: log})
}

func TestCreate_NormalizesPlateAndDefaultsOwner(t *testing.T) {
	_, svc := newService()

	vehicle := &model.Vehicle{Model: " Toyota  Axio ", Plate: "  kca   123a "}
	require.NoError(t, svc.Create(context.Background(), owner, vehicle))

	assert.NotEmpty(t, vehicle.ID)
	assert.Equal(t, "KCA 123A", vehicle.Plate)
	assert.Equal(t, "Toyota Axio", vehicle.Model)
	assert.Equal(t, owner.UserID, vehicle.Owner)
}

func TestCreate_Rejections(t *testing.T) {
	_, svc := newService()
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, owner, &model.Vehicle{Model: "Toyota Axio", Plate: "KCA 123A"}))

	err := svc.Create(ctx, stranger, &model.Vehicle{Model: "Mazda Demio", Plate: "kca 123a"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "plate taken in another case: %v", err)

	err = svc.Create(ctx, stranger, &model.Vehicle{Model: "Mazda Demio", Plate: "KDA 001B", Owner: owner.UserID})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	err = svc.Create(ctx, admin, &model.Vehicle{Model: "Mazda Demio", Plate: "KDA 001B", Owner: "64b7f0c2a1b2c3d4e5f69999"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "unknown owner: %v", err)

	err = svc.Create(ctx, owner, &model.Vehicle{Plate: "KDA 001B"})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Contains(t, apperrors.AsAppError(err).Details, "model")

	require.NoError(t, svc.Create(ctx, admin, &model.Vehicle{Model: "Mazda Demio", Plate: "KDA 001B", Owner: stranger.UserID}))
}

func TestGetByID_OwnerOrAdmin(t *testing.T) {
	_, svc := newService()
	ctx := context.Background()
	vehicle := &model.Vehicle{Model: "Toyota Axio", Plate: "KCA 123A"}
	require.NoError(t, svc.Create(ctx, owner, vehicle))

	_, err := svc.GetByID(ctx, stranger, vehicle.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	got, err := svc.GetByID(ctx, admin, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, vehicle.Plate, got.Plate)

	_, err = svc.GetByID(ctx, owner, "65b7f0c2a1b2c3d4e5f69999")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestList_ScopesNonAdmins(t *testing.T) {
	repo, svc := newService()
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, owner, &model.Vehicle{Model: "Toyota Axio", Plate: "KCA 123A"}))
	require.NoError(t, svc.Create(ctx, stranger, &model.Vehicle{Model: "Mazda Demio", Plate: "KDA 001B"}))

	vehicles, total, err := svc.List(ctx, owner, model.VehicleFilter{}, model.PageOptions{Limit: 5000})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, vehicles, 1)
	assert.Equal(t, owner.UserID, repo.queryFilter.Owner)
	assert.Equal(t, config.MaxPaginationLimit, repo.queryPage.Limit)

	_, _, err = svc.List(ctx, owner, model.VehicleFilter{Owner: stranger.UserID}, model.PageOptions{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, total, err = svc.List(ctx, admin, model.VehicleFilter{Plate: "kca 123a"}, model.PageOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "KCA 123A", repo.queryFilter.Plate)

	_, _, err = svc.List(ctx, admin, model.VehicleFilter{}, model.PageOptions{SortBy: "bogus"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestUpdate(t *testing.T) {
	_, svc := newService()
	ctx := context.Background()
	first := &model.Vehicle{Model: "Toyota Axio", Plate: "KCA 123A"}
	require.NoError(t, svc.Create(ctx, owner, first))
	require.NoError(t, svc.Create(ctx, owner, &model.Vehicle{Model: "Mazda Demio", Plate: "KDA 001B"}))

	plate := "klz 675k"
	_, err := svc.Update(ctx, stranger, first.ID, &model.VehicleUpdate{Plate: &plate})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	updated, err := svc.Update(ctx, owner, first.ID, &model.VehicleUpdate{Plate: &plate})
	require.NoError(t, err)
	assert.Equal(t, "KLZ 675K", updated.Plate)

	taken := "KDA 001B"
	_, err = svc.Update(ctx, owner, first.ID, &model.VehicleUpdate{Plate: &taken})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	unknown := "64b7f0c2a1b2c3d4e5f69999"
	_, err = svc.Update(ctx, owner, first.ID, &model.VehicleUpdate{Owner: &unknown})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.Update(ctx, owner, first.ID, &model.VehicleUpdate{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	fielder := "Toyota Fielder"
	updated, err = svc.Update(ctx, admin, first.ID, &model.VehicleUpdate{Model: &fielder})
	require.NoError(t, err)
	assert.Equal(t, "Toyota Fielder", updated.Model)
}

func TestDelete(t *testing.T) {
	_, svc := newService()
	ctx := context.Background()
	vehicle := &model.Vehicle{Model: "Toyota Axio", Plate: "KCA 123A"}
	require.NoError(t, svc.Create(ctx, owner, vehicle))

	assert.True(t, apperrors.HasCode(svc.Delete(ctx, stranger, vehicle.ID), apperrors.CodeForbidden))
	require.NoError(t, svc.Delete(ctx, owner, vehicle.ID))
	assert.True(t, apperrors.HasCode(svc.Delete(ctx, owner, vehicle.ID), apperrors.CodeNotFound))
}
