package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Developer-Square/Park254-Backend/internal/vehicles/service"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	httputil "github.com/Developer-Square/Park254-Backend/pkg/http"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/middleware"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type VehicleHandler struct {
	service service.VehicleService
	log     *logger.Logger
}

func NewVehicleHandler(service service.VehicleService, log *logger.Logger) *VehicleHandler {
	return &VehicleHandler{
		service: service,
		log:     log,
	}
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var vehicle model.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), actor(r), &vehicle); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, vehicle); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *VehicleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vehicle, err := h.service.GetByID(r.Context(), actor(r), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, vehicle); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPageOptions(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter := model.VehicleFilter{
		Plate: r.URL.Query().Get("plate"),
		Owner: r.URL.Query().Get("owner"),
	}
	vehicles, total, err := h.service.List(r.Context(), actor(r), filter, page)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, vehicles, total, page.Page, page.Limit); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.VehicleUpdate
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

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), actor(r), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteNoContent(w); err != nil {
		h.log.Error("failed to write no content response", "handler", "Delete", "operation", "WriteNoContent", "error", err)
	}
}

func (h *VehicleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/vehicles", middleware.RequireRight(auth.RightManageVehicles, h.Create))
	router.GET("/api/v1/vehicles", middleware.RequireRight(auth.RightGetVehicles, h.List))
	router.GET("/api/v1/vehicles/:id", middleware.RequireRight(auth.RightGetVehicles, h.GetByID))
	router.PATCH("/api/v1/vehicles/:id", middleware.RequireRight(auth.RightManageVehicles, h.Update))
	router.DELETE("/api/v1/vehicles/:id", middleware.RequireRight(auth.RightManageVehicles, h.Delete))
}

func (h *VehicleHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func actor(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}
