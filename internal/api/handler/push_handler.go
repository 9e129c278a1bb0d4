package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/pawfectcare/notifier/internal/api/middleware"
	"github.com/pawfectcare/notifier/internal/service"
)

// PushHandler exposes the callable direct-push endpoint.
type PushHandler struct {
	dispatcher *service.Dispatcher
	logger     *zap.Logger
}

func NewPushHandler(dispatcher *service.Dispatcher, logger *zap.Logger) *PushHandler {
	return &PushHandler{dispatcher: dispatcher, logger: logger}
}

type sendPushRequest struct {
	UserID string            `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

// Send handles POST /api/v1/push
//
// Response mirrors the transport: overall success plus the unmodified
// per-message result array, so callers can inspect per-token failures.
func (h *PushHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := h.dispatcher.SendPush(r.Context(), req.UserID, req.Title, req.Body, req.Data)
	if err != nil {
		h.logger.Warn("direct push failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": results,
	})
}
