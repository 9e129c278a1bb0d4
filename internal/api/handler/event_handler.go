package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/pawfectcare/notifier/internal/api/middleware"
	"github.com/pawfectcare/notifier/internal/domain"
	"github.com/pawfectcare/notifier/internal/service"
)

// EventHandler receives document-change events from the platform's
// trigger layer. Each request carries a read-only snapshot of the
// created document.
type EventHandler struct {
	dispatcher *service.Dispatcher
	logger     *zap.Logger
}

func NewEventHandler(dispatcher *service.Dispatcher, logger *zap.Logger) *EventHandler {
	return &EventHandler{dispatcher: dispatcher, logger: logger}
}

// PetCreated handles POST /api/v1/events/pets
func (h *EventHandler) PetCreated(w http.ResponseWriter, r *http.Request) {
	var pet domain.Pet
	if err := json.NewDecoder(r.Body).Decode(&pet); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.dispatcher.HandlePetCreated(r.Context(), &pet); err != nil {
		h.logger.Warn("pet-created handling failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("pet_id", pet.ID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "dispatched"})
}

// AdoptionRequested handles POST /api/v1/events/adoptions
func (h *EventHandler) AdoptionRequested(w http.ResponseWriter, r *http.Request) {
	var adoption domain.Adoption
	if err := json.NewDecoder(r.Body).Decode(&adoption); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.dispatcher.HandleAdoptionRequested(r.Context(), &adoption); err != nil {
		h.logger.Warn("adoption-requested handling failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("adoption_id", adoption.ID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "dispatched"})
}
