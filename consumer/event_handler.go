package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"content-search/usecase"
)

// Event types emitted by the CMS on content changes.
const (
	EventPostSaved   = "post_saved"
	EventPostDeleted = "post_deleted"
)

// PostEventPayload is the payload of post_saved and post_deleted events.
type PostEventPayload struct {
	PostID int64 `json:"post_id"`
}

// PostEventHandler applies content change events to the search index.
// Errors propagate so the consumer leaves the message un-acked for retry.
type PostEventHandler struct {
	sync   *usecase.SyncPostUsecase
	logger *slog.Logger
}

func NewPostEventHandler(sync *usecase.SyncPostUsecase, logger *slog.Logger) *PostEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostEventHandler{sync: sync, logger: logger}
}

// HandleEvent processes a single event. Unknown event types are skipped
// and acked so they do not clog the stream.
func (h *PostEventHandler) HandleEvent(ctx context.Context, event Event) error {
	switch event.EventType {
	case EventPostSaved, EventPostDeleted:
	default:
		h.logger.Warn("unknown event type, skipping",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return nil
	}

	var payload PostEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		h.logger.Error("failed to unmarshal post event payload",
			"event_id", event.EventID,
			"error", err,
		)
		return err
	}
	if payload.PostID <= 0 {
		h.logger.Warn("post event without a valid post_id, skipping",
			"event_id", event.EventID,
		)
		return nil
	}

	if event.EventType == EventPostDeleted {
		return h.sync.DeletePost(ctx, payload.PostID)
	}
	return h.sync.IndexPost(ctx, payload.PostID)
}
