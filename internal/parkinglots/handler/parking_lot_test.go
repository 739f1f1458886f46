package handler

import (
	"context"
	"encoding/json"
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

// Mock service for testing
type mockParkingLotService struct {
	createFunc func(ctx context.Context, actor auth.Principal, lot *model.ParkingLot) error
	getAllFunc func(ctx context.Context, filter model.ParkingLotFilter, page model.PageOptions) ([]*model.ParkingLot, int64, error)
	updateFunc func(ctx context.Context, actor auth.Principal, id string, u *model.ParkingLotUpdate) (*model.ParkingLot, error)
	nearbyFunc func(ctx context.Context, query model.NearbyQuery) ([]*model.ParkingLot, error)
}

func (m *mockParkingLotService) Create(ctx context.Context, actor auth.Principal, lot *model.ParkingLot) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, actor, lot)
	}
	return nil
}

func (m *mockParkingLotService) GetByID(ctx context.Context, id string) (*model.ParkingLot, error) {
	if id == "missing" {
		return nil, apperrors.NotFoundWithID("Parking lot", id)
	}
	return &model.ParkingLot{ID: id}, nil
}

func (m *mockParkingLotService) GetAll(ctx context.Context, filter model.ParkingLotFilter, page model.PageOptions) ([]*model.ParkingLot, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, filter, page)
	}
	return []*model.ParkingLot{}, 0, nil
}

func (m *mockParkingLotService) Update(ctx context.Context, actor auth.Principal, id string, u *model.ParkingLotUpdate) (*model.ParkingLot, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, actor, id, u)
	}
	return &model.ParkingLot{ID: id}, nil
}

func (m *mockParkingLotService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	return nil
}

func (m *mockParkingLotService) Nearby(ctx context.Context, query model.NearbyQuery) ([]*model.ParkingLot, error) {
	if m.nearbyFunc != nil {
		return m.nearbyFunc(ctx, query)
	}
	return []*model.ParkingLot{}, nil
}

func newRouter(svc *mockParkingLotService, principal *auth.Principal) http.Handler {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	router := httprouter.New()
	NewParkingLotHandler(svc, log).RegisterRoutes(router)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal != nil {
			r = r.WithContext(auth.WithPrincipal(r.Context(), *principal))
		}
		router.ServeHTTP(w, r)
	})
}

var (
	user   = &auth.Principal{UserID: "64b7f0c2a1b2c3d4e5f60101", Role: auth.RoleUser}
	vendor = &auth.Principal{UserID: "64b7f0c2a1b2c3d4e5f60201", Role: auth.RoleVendor}
)

func TestCreate(t *testing.T) {
	svc := &mockParkingLotService{
		createFunc: func(ctx context.Context, actor auth.Principal, lot *model.ParkingLot) error {
			if lot.Name == "taken" {
				return apperrors.Conflict("Parking lot name already taken")
			}
			lot.ID = "64b7f0c2a1b2c3d4e5f60001"
			lot.Owner = actor.UserID
			return nil
		},
	}

	tests := []struct {
		name       string
		principal  *auth.Principal
		body       string
		expectCode int
	}{
		{"created", vendor, `{"name":"Sarit Centre","spaces":800,"price":200}`, http.StatusCreated},
		{"duplicate name", vendor, `{"name":"taken"}`, http.StatusConflict},
		{"malformed body", vendor, `{"name":`, http.StatusBadRequest},
		{"users cannot register lots", user, `{}`, http.StatusForbidden},
		{"unauthenticated", nil, `{}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/parking-lots", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newRouter(svc, tt.principal).ServeHTTP(rec, req)

			if rec.Code != tt.expectCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
			if tt.expectCode != http.StatusCreated {
				return
			}

			var body struct {
				Data model.ParkingLot `json:"data"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Data.ID == "" || body.Data.Owner != vendor.UserID {
				t.Errorf("unexpected lot in response: %+v", body.Data)
			}
		})
	}
}

func TestGetAll_Filters(t *testing.T) {
	var gotFilter model.ParkingLotFilter
	var gotPage model.PageOptions
	svc := &mockParkingLotService{
		getAllFunc: func(ctx context.Context, filter model.ParkingLotFilter, page model.PageOptions) ([]*model.ParkingLot, int64, error) {
			gotFilter, gotPage = filter, page
			return []*model.ParkingLot{{ID: "a"}}, 21, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/parking-lots?name=Sarit&city=Nairobi&owner=64b7f0c2a1b2c3d4e5f60201&limit=10&page=2&sortBy=price:desc", nil)
	rec := httptest.NewRecorder()
	newRouter(svc, user).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotFilter.Name != "Sarit" || gotFilter.City != "Nairobi" || gotFilter.Owner != vendor.UserID {
		t.Errorf("unexpected filter: %+v", gotFilter)
	}
	if gotPage.Limit != 10 || gotPage.Page != 2 || gotPage.SortBy != "price:desc" {
		t.Errorf("unexpected page options: %+v", gotPage)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["totalResults"] != float64(21) || body["totalPages"] != float64(3) {
		t.Errorf("unexpected pagination envelope: %v", body)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/parking-lots/missing", nil)
	rec := httptest.NewRecorder()
	newRouter(&mockParkingLotService{}, user).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdate_PassesActor(t *testing.T) {
	var gotActor auth.Principal
	var gotSpaces int
	svc := &mockParkingLotService{
		updateFunc: func(ctx context.Context, actor auth.Principal, id string, u *model.ParkingLotUpdate) (*model.ParkingLot, error) {
			gotActor = actor
			if u.Spaces != nil {
				gotSpaces = *u.Spaces
			}
			return &model.ParkingLot{ID: id, Spaces: gotSpaces}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/parking-lots/64b7f0c2a1b2c3d4e5f60001", strings.NewReader(`{"spaces":900}`))
	rec := httptest.NewRecorder()
	newRouter(svc, vendor).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotActor.UserID != vendor.UserID || gotSpaces != 900 {
		t.Errorf("unexpected service call: actor=%+v spaces=%d", gotActor, gotSpaces)
	}
}

func TestNearby(t *testing.T) {
	var got model.NearbyQuery
	svc := &mockParkingLotService{
		nearbyFunc: func(ctx context.Context, query model.NearbyQuery) ([]*model.ParkingLot, error) {
			got = query
			return []*model.ParkingLot{}, nil
		},
	}

	tests := []struct {
		name       string
		query      string
		expectCode int
	}{
		{"with distance", "?longitude=36.8&latitude=-1.26&maxDistance=2.5", http.StatusOK},
		{"missing latitude", "?longitude=36.8", http.StatusBadRequest},
		{"bad distance", "?longitude=36.8&latitude=-1.26&maxDistance=far", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/nearby-parking"+tt.query, nil)
			rec := httptest.NewRecorder()
			newRouter(svc, user).ServeHTTP(rec, req)

			if rec.Code != tt.expectCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
		})
	}

	if got.Longitude != 36.8 || got.Latitude != -1.26 || got.MaxDistanceKm != 2.5 {
		t.Errorf("unexpected nearby query: %+v", got)
	}
}
