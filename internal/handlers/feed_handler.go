package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gatherly-app/gatherly/internal/services"
	"github.com/gatherly-app/gatherly/pkg/logger"
	"github.com/gatherly-app/gatherly/pkg/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FeedHandler exposes the activity feed endpoints.
type FeedHandler struct {
	Service *services.FeedService
}

func NewFeedHandler(service *services.FeedService) *FeedHandler {
	return &FeedHandler{Service: service}
}

// GetFeedHandler returns one page of the viewer's feed.
// GET /feed?page=1&page_size=20[&since=RFC3339]
func (h *FeedHandler) GetFeedHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to fetch feed")
		return
	}

	viewerID, _ := primitive.ObjectIDFromHex(claims.UserID)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "Invalid since timestamp", http.StatusBadRequest)
			return
		}
		since = &parsed
	}

	feed, err := h.Service.GetFeed(r.Context(), viewerID, page, pageSize, since)
	if err != nil {
		logger.Log.Errorf("Failed to build feed for user %s: %v", claims.UserID, err)
		http.Error(w, "Could not load feed right now", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(feed)
}

// RefreshFeedHandler returns records newer than the client's watermark,
// oldest first. A truncated response is contiguous with the watermark, so
// clients advance it to the newest record received and poll again.
// GET /feed/refresh?since=RFC3339[&limit=100]
func (h *FeedHandler) RefreshFeedHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	viewerID, _ := primitive.ObjectIDFromHex(claims.UserID)

	raw := r.URL.Query().Get("since")
	if raw == "" {
		http.Error(w, "since is required", http.StatusBadRequest)
		return
	}
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		http.Error(w, "Invalid since timestamp", http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	delta, err := h.Service.GetDelta(r.Context(), viewerID, since, limit)
	if err != nil {
		logger.Log.Errorf("Failed to fetch feed delta for user %s: %v", claims.UserID, err)
		http.Error(w, "Could not load feed right now", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"records": delta,
		"count":   len(delta),
	})
}
