package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/gatherly-app/gatherly/internal/services"
	"github.com/gatherly-app/gatherly/pkg/logger"
	"github.com/gatherly-app/gatherly/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventHandler manages HTTP endpoints for the event lifecycle.
type EventHandler struct {
	Service *services.EventService
}

func NewEventHandler(service *services.EventService) *EventHandler {
	return &EventHandler{Service: service}
}

// CreateEventHandler creates a new event hosted by the caller.
func (h *EventHandler) CreateEventHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		logger.Log.Warnf("Failed to decode event payload: %v", err)
		return
	}
	defer r.Body.Close()

	hostID, _ := primitive.ObjectIDFromHex(claims.UserID)

	created, err := h.Service.CreateEvent(r.Context(), hostID, &event)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		logger.Log.Warnf("Failed to create event: %v", err)
		return
	}

	logger.Log.Infof("User %s created event %s", claims.UserID, created.ID.Hex())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(created)
}

// GetEventHandler fetches a single event by ID.
func (h *EventHandler) GetEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	event, err := h.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		http.Error(w, "Event not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event)
}

// GetMyEventsHandler lists events the caller hosts or attends.
func (h *EventHandler) GetMyEventsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	events, err := h.Service.GetUserEvents(r.Context(), userID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch events for user %s: %v", claims.UserID, err)
		http.Error(w, "Failed to get events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// JoinEventHandler adds the caller to an event's attendee set.
func (h *EventHandler) JoinEventHandler(w http.ResponseWriter, r *http.Request) {
	h.membershipAction(w, r, func(eventID, userID primitive.ObjectID) error {
		return h.Service.JoinEvent(r.Context(), eventID, userID)
	}, "joined")
}

// LeaveEventHandler removes the caller from an event. Leaving within 24
// hours of start carries the karma penalty.
func (h *EventHandler) LeaveEventHandler(w http.ResponseWriter, r *http.Request) {
	h.membershipAction(w, r, func(eventID, userID primitive.ObjectID) error {
		return h.Service.LeaveEvent(r.Context(), eventID, userID)
	}, "left")
}

func (h *EventHandler) membershipAction(w http.ResponseWriter, r *http.Request, action func(eventID, userID primitive.ObjectID) error, verb string) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	if err := action(eventID, userID); err != nil {
		writeServiceError(w, err)
		logger.Log.Warnf("User %s failed to %s event %s: %v", claims.UserID, verb, eventID.Hex(), err)
		return
	}

	logger.Log.Infof("User %s %s event %s", claims.UserID, verb, eventID.Hex())
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Event " + verb})
}

// CancelEventHandler cancels an active event. Host only.
func (h *EventHandler) CancelEventHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)

	if err := h.Service.CancelEvent(r.Context(), eventID, userID); err != nil {
		writeServiceError(w, err)
		logger.Log.Warnf("User %s failed to cancel event %s: %v", claims.UserID, eventID.Hex(), err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Event canceled"})
}

// BanAttendeeHandler removes and bans an attendee. Host only.
func (h *EventHandler) BanAttendeeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	eventID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}
	targetID, err := primitive.ObjectIDFromHex(vars["userId"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	hostID, _ := primitive.ObjectIDFromHex(claims.UserID)

	if err := h.Service.BanAttendee(r.Context(), eventID, hostID, targetID); err != nil {
		writeServiceError(w, err)
		logger.Log.Warnf("User %s failed to ban %s from event %s: %v", claims.UserID, vars["userId"], eventID.Hex(), err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Attendee banned"})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
