package health

import (
	"context"
	"net/http"
	"time"

	httputil "github.com/Developer-Square/Park254-Backend/pkg/http"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const readyTimeout = 2 * time.Second

type Response struct {
	Status   string `json:"status"`
	Backends string `json:"backends,omitempty"`
}

// Pinger reports whether the backing stores are reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	pinger Pinger
	log    *logger.Logger
}

func NewHandler(pinger Pinger, log *logger.Logger) *Handler {
	return &Handler{
		pinger: pinger,
		log:    log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.log.Error("Readiness check failed",
			"error", err,
			"path", r.URL.Path,
		)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "unavailable",
			Backends: "error",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, Response{
		Status:   "ready",
		Backends: "ok",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
