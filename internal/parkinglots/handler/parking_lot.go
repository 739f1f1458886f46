package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Developer-Square/Park254-Backend/internal/parkinglots/service"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	httputil "github.com/Developer-Square/Park254-Backend/pkg/http"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/middleware"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ParkingLotHandler struct {
	service service.ParkingLotService
	log     *logger.Logger
}

func NewParkingLotHandler(service service.ParkingLotService, log *logger.Logger) *ParkingLotHandler {
	return &ParkingLotHandler{
		service: service,
		log:     log,
	}
}

func (h *ParkingLotHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var lot model.ParkingLot
	if err := json.NewDecoder(r.Body).Decode(&lot); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), actor(r), &lot); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, lot); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ParkingLotHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lot, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, lot); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ParkingLotHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPageOptions(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	query := r.URL.Query()
	filter := model.ParkingLotFilter{
		Name:  query.Get("name"),
		Owner: query.Get("owner"),
		City:  query.Get("city"),
	}

	lots, total, err := h.service.GetAll(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, lots, total, page.Page, page.Limit); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ParkingLotHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.ParkingLotUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	updated, err := h.service.Update(r.Context(), actor(r), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ParkingLotHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), actor(r), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteNoContent(w); err != nil {
		h.log.Error("failed to write no content response", "handler", "Delete", "operation", "WriteNoContent", "error", err)
	}
}

// Nearby serves GET /nearby-parking?longitude&latitude&maxDistance. The
// coordinates are mandatory; maxDistance is in kilometres.
func (h *ParkingLotHandler) Nearby(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	if query.Get("longitude") == "" || query.Get("latitude") == "" {
		h.writeError(w, "Nearby", apperrors.InvalidInput("longitude and latitude are required"))
		return
	}

	var (
		nearby model.NearbyQuery
		err    error
	)
	if nearby.Longitude, err = httputil.OptionalFloat(r, "longitude", 0); err != nil {
		h.writeError(w, "Nearby", err)
		return
	}
	if nearby.Latitude, err = httputil.OptionalFloat(r, "latitude", 0); err != nil {
		h.writeError(w, "Nearby", err)
		return
	}
	if nearby.MaxDistanceKm, err = httputil.OptionalFloat(r, "maxDistance", 0); err != nil {
		h.writeError(w, "Nearby", err)
		return
	}

	lots, err := h.service.Nearby(r.Context(), nearby)
	if err != nil {
		h.writeError(w, "Nearby", err)
		return
	}

	if err := httputil.WriteSuccess(w, lots); err != nil {
		h.log.Error("failed to write success response", "handler", "Nearby", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ParkingLotHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/parking-lots", middleware.RequireRight(auth.RightManageParkingLots, h.Create))
	router.GET("/api/v1/parking-lots", middleware.RequireRight(auth.RightGetParkingLots, h.GetAll))
	router.GET("/api/v1/parking-lots/:id", middleware.RequireRight(auth.RightGetParkingLots, h.GetByID))
	router.PATCH("/api/v1/parking-lots/:id", middleware.RequireRight(auth.RightManageParkingLots, h.Update))
	router.DELETE("/api/v1/parking-lots/:id", middleware.RequireRight(auth.RightManageParkingLots, h.Delete))
	router.GET("/api/v1/nearby-parking", middleware.RequireRight(auth.RightGetParkingLots, h.Nearby))
}

func (h *ParkingLotHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func actor(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}
