package bus

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

func samplePost() model.Post {
	return model.Post{
		ID:          uuid.New(),
		Content:     "hello from the bus",
		UserID:      uuid.New(),
		TimeCreated: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		TimeUpdated: time.Date(2025, 3, 1, 10, 5, 0, 0, time.UTC),
	}
}

func TestPostEventRoundTrip(t *testing.T) {
	post := samplePost()
	event := NewCreatedEvent(post)

	if event.Kind != EventCreated {
		t.Fatalf("expected kind %s, got %s", EventCreated, event.Kind)
	}
	if event.PostID != post.ID || event.AuthorID != post.UserID {
		t.Fatalf("constructor did not copy post identity: %+v", event)
	}

	body, err := event.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	parsed, err := ParsePostEvent(body)
	if err != nil {
		t.Fatalf("ParsePostEvent failed: %v", err)
	}
	if parsed.Kind != EventCreated {
		t.Errorf("expected kind %s, got %s", EventCreated, parsed.Kind)
	}
	if parsed.Snapshot.ID != post.ID {
		t.Errorf("expected snapshot post %s, got %s", post.ID, parsed.Snapshot.ID)
	}
	if parsed.Snapshot.Content != post.Content {
		t.Errorf("expected snapshot content %q, got %q", post.Content, parsed.Snapshot.Content)
	}
	if !parsed.Snapshot.TimeUpdated.Equal(post.TimeUpdated) {
		t.Errorf("expected time_updated %v, got %v", post.TimeUpdated, parsed.Snapshot.TimeUpdated)
	}
}

func TestPostEventConstructorKinds(t *testing.T) {
	post := samplePost()

	if got := NewUpdatedEvent(post).Kind; got != EventUpdated {
		t.Errorf("NewUpdatedEvent kind = %s, want %s", got, EventUpdated)
	}
	if got := NewDeletedEvent(post).Kind; got != EventDeleted {
		t.Errorf("NewDeletedEvent kind = %s, want %s", got, EventDeleted)
	}
}

func TestParsePostEventRejectsGarbage(t *testing.T) {
	if _, err := ParsePostEvent([]byte("not json")); err == nil {
		t.Error("expected error for malformed body")
	}
	if _, err := ParsePostEvent([]byte(`{"kind":"EXPLODED"}`)); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestSubscriberNaming(t *testing.T) {
	userID := uuid.MustParse("7b0c8896-4fb9-4f7d-a535-9f43817dfb25")

	if got := PushQueueName(userID); got != "feed.push.ws.7b0c8896-4fb9-4f7d-a535-9f43817dfb25" {
		t.Errorf("unexpected push queue name: %s", got)
	}
	if got := UserRoutingKey(userID); got != "feed.userid.7b0c8896-4fb9-4f7d-a535-9f43817dfb25" {
		t.Errorf("unexpected routing key: %s", got)
	}
}
