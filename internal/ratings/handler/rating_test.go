package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockRatingService struct {
	created []model.Rating
	updated []string
	deleted []string
}

func (m *mockRatingService) Create(_ context.Context, actor auth.Principal, rating *model.Rating) error {
	rating.ID = "66b7f0c2a1b2c3d4e5f60001"
	rating.UserID = actor.UserID
	m.created = append(m.created, *rating)
	return nil
}

func (m *mockRatingService) GetByID(_ context.Context, id string) (*model.Rating, error) {
	return nil, apperrors.NotFoundWithID("Rating", id)
}

func (m *mockRatingService) List(_ context.Context, filter model.RatingFilter, page model.PageOptions) ([]*model.Rating, int64, error) {
	return []*model.Rating{}, 0, nil
}

func (m *mockRatingService) Update(_ context.Context, actor auth.Principal, id string, update *model.RatingUpdate) (*model.Rating, error) {
	if update.Value == nil {
		return nil, apperrors.Validation("Rating validation failed", map[string]any{"value": "value is required"})
	}
	m.updated = append(m.updated, id)
	return &model.Rating{ID: id, UserID: actor.UserID, Value: *update.Value}, nil
}

func (m *mockRatingService) Delete(_ context.Context, actor auth.Principal, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func serve(svc *mockRatingService, role, method, target, body string) *httptest.ResponseRecorder {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	router := httprouter.New()
	NewRatingHandler(svc, log).RegisterRoutes(router)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if role != "" {
		req = req.WithContext(auth.WithPrincipal(req.Context(), auth.Principal{UserID: "64b7f0c2a1b2c3d4e5f60101", Role: role}))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRatingRoutes(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		method     string
		target     string
		body       string
		expectCode int
	}{
		{"user rates a lot", auth.RoleUser, http.MethodPost, "/api/v1/ratings", `{"parkingLotId":"64b7f0c2a1b2c3d4e5f60001","value":4}`, http.StatusCreated},
		{"vendor cannot rate", auth.RoleVendor, http.MethodPost, "/api/v1/ratings", `{}`, http.StatusForbidden},
		{"malformed body", auth.RoleUser, http.MethodPost, "/api/v1/ratings", `{"value":`, http.StatusBadRequest},
		{"vendor lists ratings", auth.RoleVendor, http.MethodGet, "/api/v1/ratings?parkingLotId=64b7f0c2a1b2c3d4e5f60001", "", http.StatusOK},
		{"unknown rating", auth.RoleUser, http.MethodGet, "/api/v1/ratings/66b7f0c2a1b2c3d4e5f60009", "", http.StatusNotFound},
		{"user updates rating", auth.RoleUser, http.MethodPatch, "/api/v1/ratings/66b7f0c2a1b2c3d4e5f60001", `{"value":2}`, http.StatusOK},
		{"update without value", auth.RoleUser, http.MethodPatch, "/api/v1/ratings/66b7f0c2a1b2c3d4e5f60001", `{}`, http.StatusUnprocessableEntity},
		{"vendor cannot update rating", auth.RoleVendor, http.MethodPatch, "/api/v1/ratings/66b7f0c2a1b2c3d4e5f60001", `{"value":2}`, http.StatusForbidden},
		{"user deletes rating", auth.RoleUser, http.MethodDelete, "/api/v1/ratings/66b7f0c2a1b2c3d4e5f60001", "", http.StatusNoContent},
		{"anonymous", "", http.MethodGet, "/api/v1/ratings", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&mockRatingService{}, tt.role, tt.method, tt.target, tt.body)
			if rec.Code != tt.expectCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreate_UsesCaller(t *testing.T) {
	svc := &mockRatingService{}
	rec := serve(svc, auth.RoleUser, http.MethodPost, "/api/v1/ratings", `{"parkingLotId":"64b7f0c2a1b2c3d4e5f60001","value":5}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if len(svc.created) != 1 || svc.created[0].UserID != "64b7f0c2a1b2c3d4e5f60101" || svc.created[0].Value != 5 {
		t.Errorf("unexpected service call: %+v", svc.created)
	}
}
