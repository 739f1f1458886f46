package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Developer-Square/Park254-Backend/internal/ratings/service"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	httputil "github.com/Developer-Square/Park254-Backend/pkg/http"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/middleware"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RatingHandler struct {
	service service.RatingService
	log     *logger.Logger
}

func NewRatingHandler(service service.RatingService, log *logger.Logger) *RatingHandler {
	return &RatingHandler{service: service, log: log}
}

func (h *RatingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var rating model.Rating
	if err := json.NewDecoder(r.Body).Decode(&rating); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	principal, _ := auth.FromContext(r.Context())
	if err := h.service.Create(r.Context(), principal, &rating); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, rating); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RatingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rating, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, rating); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RatingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPageOptions(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	filter := model.RatingFilter{
		ParkingLotID: r.URL.Query().Get("parkingLotId"),
		UserID:       r.URL.Query().Get("userId"),
	}
	ratings, total, err := h.service.List(r.Context(), filter, page)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, ratings, total, page.Page, page.Limit); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *RatingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.RatingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	principal, _ := auth.FromContext(r.Context())
	rating, err := h.service.Update(r.Context(), principal, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, rating); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RatingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, _ := auth.FromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteNoContent(w); err != nil {
		h.log.Error("failed to write no content response", "handler", "Delete", "operation", "WriteNoContent", "error", err)
	}
}

func (h *RatingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/ratings", middleware.RequireRight(auth.RightAddRatings, h.Create))
	router.GET("/api/v1/ratings", middleware.RequireRight(auth.RightGetRatings, h.List))
	router.GET("/api/v1/ratings/:id", middleware.RequireRight(auth.RightGetRatings, h.GetByID))
	router.PATCH("/api/v1/ratings/:id", middleware.RequireRight(auth.RightAddRatings, h.Update))
	router.DELETE("/api/v1/ratings/:id", middleware.RequireRight(auth.RightAddRatings, h.Delete))
}

func (h *RatingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
