package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Developer-Square/Park254-Backend/internal/bookings/service"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	httputil "github.com/Developer-Square/Park254-Backend/pkg/http"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/middleware"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var booking model.Booking
	if err := json.NewDecoder(r.Body).Decode(&booking); err != nil {
		h.writeError(w, "Book", apperrors.InvalidInput("Invalid request body"))
		return
	}

	created, err := h.service.Book(r.Context(), actor(r), &booking)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), actor(r), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Query serves GET /bookings?parkingLotId&clientId&isCancelled&sortBy&limit&page.
func (h *BookingHandler) Query(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := httputil.ExtractPageOptions(r)
	if err != nil {
		h.writeError(w, "Query", err)
		return
	}
	isCancelled, err := httputil.OptionalBool(r, "isCancelled")
	if err != nil {
		h.writeError(w, "Query", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		ParkingLotID: query.Get("parkingLotId"),
		ClientID:     query.Get("clientId"),
		IsCancelled:  isCancelled,
	}

	result, err := h.service.Query(r.Context(), actor(r), filter, page)
	if err != nil {
		h.writeError(w, "Query", err)
		return
	}

	if err := httputil.WritePaginated(w, result.Results, result.TotalResults, result.Page, result.Limit); err != nil {
		h.log.Error("failed to write paginated response", "handler", "Query", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	updated, err := h.service.UpdateBookedParkingLot(r.Context(), actor(r), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cancelled, err := h.service.CancelBooking(r.Context(), actor(r), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, cancelled); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.DeleteBooking(r.Context(), actor(r), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteNoContent(w); err != nil {
		h.log.Error("failed to write no content response", "handler", "Delete", "operation", "WriteNoContent", "error", err)
	}
}

// FindAvailableSpaces answers 404 when none of the requested lots has an
// overlapping booking in the window.
func (h *BookingHandler) FindAvailableSpaces(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var query model.SpacesQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		h.writeError(w, "FindAvailableSpaces", apperrors.InvalidInput("Invalid request body"))
		return
	}

	results, err := h.service.FindAvailableSpaces(r.Context(), &query)
	if err != nil {
		h.writeError(w, "FindAvailableSpaces", err)
		return
	}

	if err := httputil.WriteSuccess(w, results); err != nil {
		h.log.Error("failed to write success response", "handler", "FindAvailableSpaces", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", middleware.RequireRight(auth.RightBook, h.Book))
	router.GET("/api/v1/bookings", middleware.RequireRight(auth.RightGetBookings, h.Query))
	router.GET("/api/v1/bookings/:id", middleware.RequireRight(auth.RightGetBookings, h.GetByID))
	router.PATCH("/api/v1/bookings/:id", middleware.RequireRight(auth.RightManageBookings, h.Update))
	router.POST("/api/v1/bookings/:id", middleware.RequireRight(auth.RightManageBookings, h.Cancel))
	router.DELETE("/api/v1/bookings/:id", middleware.RequireRight(auth.RightManageBookings, h.Delete))
	router.POST("/api/v1/spaces", middleware.RequireRight(auth.RightGetParkingLots, h.FindAvailableSpaces))
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// actor returns the authenticated caller. Routes are wrapped in RequireRight,
// so a principal is always present.
func actor(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}
