package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trendscope/internal/domain/trend"
)

// TopicHandler serves the archived-topics API.
type TopicHandler struct {
	store trend.RunStore
}

// NewTopicHandler creates a topic handler.
func NewTopicHandler(store trend.RunStore) *TopicHandler {
	return &TopicHandler{store: store}
}

// ListTopics returns archived topics matching the query filters.
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	filter := trend.TopicFilter{}

	if category := r.URL.Query().Get("category"); category != "" {
		filter.Category = trend.Category(category)
	}
	if minConfidence, err := strconv.ParseFloat(r.URL.Query().Get("min_confidence"), 64); err == nil {
		filter.MinConfidence = minConfidence
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = limit
	}

	topics, err := h.store.FindTopics(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get topics")
		return
	}
	if topics == nil {
		topics = []trend.Topic{}
	}
	respondWithJSON(w, http.StatusOK, topics)
}

// GetTopic returns one archived topic by cluster key.
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		respondWithError(w, http.StatusBadRequest, "Missing cluster key")
		return
	}

	topic, err := h.store.GetTopic(r.Context(), key)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get topic")
		return
	}
	if topic == nil {
		respondWithError(w, http.StatusNotFound, "Topic not found")
		return
	}
	respondWithJSON(w, http.StatusOK, topic)
}
