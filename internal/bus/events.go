package bus

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

// Event kinds carried by PostEvent.
const (
	EventCreated = "CREATED"
	EventUpdated = "UPDATED"
	EventDeleted = "DELETED"
)

// PostEvent is the message published for every post mutation. It embeds a
// full snapshot of the post so consumers never have to query the database
// to materialize cache entries.
type PostEvent struct {
	Kind     string     `json:"kind"`
	PostID   uuid.UUID  `json:"post_id"`
	AuthorID uuid.UUID  `json:"author_id"`
	Snapshot model.Post `json:"snapshot"`
}

func NewCreatedEvent(post model.Post) PostEvent {
	return PostEvent{
		Kind:     EventCreated,
		PostID:   post.ID,
		AuthorID: post.UserID,
		Snapshot: post,
	}
}

func NewUpdatedEvent(post model.Post) PostEvent {
	return PostEvent{
		Kind:     EventUpdated,
		PostID:   post.ID,
		AuthorID: post.UserID,
		Snapshot: post,
	}
}

func NewDeletedEvent(post model.Post) PostEvent {
	return PostEvent{
		Kind:     EventDeleted,
		PostID:   post.ID,
		AuthorID: post.UserID,
		Snapshot: post,
	}
}

// Encode serializes the event for publishing.
func (e PostEvent) Encode() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post event: %w", err)
	}
	return body, nil
}

// ParsePostEvent decodes a delivery body back into a PostEvent.
func ParsePostEvent(body []byte) (PostEvent, error) {
	var event PostEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return PostEvent{}, fmt.Errorf("failed to parse post event: %w", err)
	}
	switch event.Kind {
	case EventCreated, EventUpdated, EventDeleted:
	default:
		return PostEvent{}, fmt.Errorf("unknown post event kind: %q", event.Kind)
	}
	return event, nil
}
