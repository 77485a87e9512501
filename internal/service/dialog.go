package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

// DialogService proxies dialog operations to the dialogs microservice over
// plain HTTP, forwarding the caller's request id so a conversation can be
// traced across both services.
type DialogService struct {
	baseURL    string
	httpClient *http.Client
}

func NewDialogService(baseURL string) *DialogService {
	return &DialogService{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send delivers a message from sender to receiver.
func (s *DialogService) Send(ctx context.Context, requestID string, senderID, receiverID uuid.UUID, text string) error {
	if strings.TrimSpace(text) == "" {
		return model.ErrDialogMessageEmpty
	}

	payload := model.DialogSendPayload{
		MessageSenderUserID:   senderID.String(),
		MessageReceiverUserID: receiverID.String(),
		Text:                  text,
	}

	return s.post(ctx, requestID, "/dialog/send", payload, nil)
}

// List returns the messages between two users, oldest first, windowed by
// offset and limit.
func (s *DialogService) List(ctx context.Context, requestID string, userID1, userID2 uuid.UUID, offset, limit int) ([]model.DialogMessage, error) {
	payload := model.DialogListPayload{
		UserID1: userID1.String(),
		UserID2: userID2.String(),
		Offset:  offset,
		Limit:   limit,
	}

	messages := []model.DialogMessage{}
	if err := s.post(ctx, requestID, "/dialog/list", payload, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

func (s *DialogService) post(ctx context.Context, requestID, path string, payload interface{}, out interface{}) error {
	startTime := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal dialog payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create dialog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call dialogs service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		log.Printf("[DialogService] Upstream FAILED: path=%s status=%d body=%s", path, resp.StatusCode, respBody)
		return fmt.Errorf("dialogs service returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode dialogs response: %w", err)
		}
	}

	log.Printf("[DialogService] Upstream OK: path=%s duration=%v", path, time.Since(startTime))
	return nil
}
