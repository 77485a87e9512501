package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

type upstreamCall struct {
	Path      string
	RequestID string
	Body      []byte
}

// fakeDialogs stands in for the dialogs microservice and records what the
// proxy sends it.
func fakeDialogs(t *testing.T, status int, response interface{}) (*httptest.Server, *[]upstreamCall) {
	t.Helper()
	calls := &[]upstreamCall{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		*calls = append(*calls, upstreamCall{
			Path:      r.URL.Path,
			RequestID: r.Header.Get("x-request-id"),
			Body:      body,
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(server.Close)
	return server, calls
}

func TestDialogService_Send(t *testing.T) {
	server, calls := fakeDialogs(t, http.StatusOK, "ok")
	svc := NewDialogService(server.URL)

	sender := uuid.New()
	receiver := uuid.New()
	err := svc.Send(context.Background(), "req-123", sender, receiver, "hello there")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("upstream called %d times, want 1", len(*calls))
	}
	call := (*calls)[0]
	if call.Path != "/dialog/send" {
		t.Errorf("path = %s, want /dialog/send", call.Path)
	}
	if call.RequestID != "req-123" {
		t.Errorf("x-request-id = %q, want req-123", call.RequestID)
	}

	var payload model.DialogSendPayload
	if err := json.Unmarshal(call.Body, &payload); err != nil {
		t.Fatalf("upstream body is not a send payload: %v", err)
	}
	if payload.MessageSenderUserID != sender.String() || payload.MessageReceiverUserID != receiver.String() {
		t.Error("payload should carry both participants")
	}
	if payload.Text != "hello there" {
		t.Errorf("payload text = %q, want %q", payload.Text, "hello there")
	}
}

func TestDialogService_Send_EmptyText(t *testing.T) {
	server, calls := fakeDialogs(t, http.StatusOK, "ok")
	svc := NewDialogService(server.URL)

	err := svc.Send(context.Background(), "", uuid.New(), uuid.New(), "  ")
	if !errors.Is(err, model.ErrDialogMessageEmpty) {
		t.Fatalf("expected ErrDialogMessageEmpty, got %v", err)
	}
	if len(*calls) != 0 {
		t.Error("empty messages must not reach the upstream")
	}
}

func TestDialogService_List(t *testing.T) {
	dialogID := uuid.New()
	expected := []model.DialogMessage{
		{ID: uuid.New(), DialogID: dialogID, UserID: uuid.New(), Content: "first"},
		{ID: uuid.New(), DialogID: dialogID, UserID: uuid.New(), Content: "second"},
	}
	server, calls := fakeDialogs(t, http.StatusOK, expected)
	svc := NewDialogService(server.URL)

	u1 := uuid.New()
	u2 := uuid.New()
	messages, err := svc.List(context.Background(), "req-456", u1, u2, 5, 20)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Content != "first" || messages[1].Content != "second" {
		t.Error("messages should come back in upstream order")
	}

	call := (*calls)[0]
	if call.Path != "/dialog/list" {
		t.Errorf("path = %s, want /dialog/list", call.Path)
	}
	var payload model.DialogListPayload
	if err := json.Unmarshal(call.Body, &payload); err != nil {
		t.Fatalf("upstream body is not a list payload: %v", err)
	}
	if payload.Offset != 5 || payload.Limit != 20 {
		t.Errorf("window = (%d, %d), want (5, 20)", payload.Offset, payload.Limit)
	}
}

func TestDialogService_UpstreamFailure(t *testing.T) {
	server, _ := fakeDialogs(t, http.StatusInternalServerError, map[string]string{"error": "boom"})
	svc := NewDialogService(server.URL)

	if err := svc.Send(context.Background(), "", uuid.New(), uuid.New(), "hello"); err == nil {
		t.Error("expected error when the upstream fails")
	}
	if _, err := svc.List(context.Background(), "", uuid.New(), uuid.New(), 0, 10); err == nil {
		t.Error("expected error when the upstream fails")
	}
}
