package handler

import (
	"net/http"

	"github.com/innofeed/innofeed/internal/handler/dto"
)

const msgNoPreferences = "No domain preferences found for this user."

// Domains lists the catalog.
// GET /domains
func (h *Handler) Domains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.catalog.Domains(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "domains_failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to load domains")
		return
	}
	writeJSON(w, http.StatusOK, domains)
}

// Feed returns the user's personalized feed.
// GET /feed/{userId}
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	feed, err := h.feeds.Feed(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "feed_query_failed", "user_id", id, "error", err)
		writeDetail(w, http.StatusInternalServerError, "DB query failed: "+err.Error())
		return
	}

	resp := dto.FeedResponse{UserID: id, Feed: dto.ToFeedItems(feed.Items)}
	if !feed.HasPreferences {
		resp.Message = msgNoPreferences
	}
	h.metrics.IncFeedServed(len(resp.Feed))
	writeJSON(w, http.StatusOK, resp)
}

// SetPreferences replaces the user's domain selection.
// POST /set-preferences/{userId}
func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.PreferencesRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.feeds.SetPreferences(r.Context(), id, req.DomainIDs); err != nil {
		h.logger.ErrorContext(r.Context(), "preferences_failed", "user_id", id, "error", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to save preferences")
		return
	}

	h.logger.InfoContext(r.Context(), "preferences_saved", "user_id", id, "domains", len(req.DomainIDs))
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Preferences saved successfully"})
}
