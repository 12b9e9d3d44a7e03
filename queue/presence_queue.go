// Package queue defines the presence topics and message envelopes shared by
// the tracker (client side) and the responder (server side).
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nguyengiapalth/flowx-sync/domain"
)

const (
	// PresenceTopic broadcasts individual join/leave events.
	PresenceTopic = "presence.status"

	// RequestTopic carries snapshot requests; the reply goes to the
	// requester's private queue.
	RequestTopic = "presence.request"

	// HeartbeatTopic carries keep-alive beats that refresh store TTLs.
	HeartbeatTopic = "presence.heartbeat"
)

// SnapshotRequest asks the responder for the full online set.
type SnapshotRequest struct {
	ReplyTo string `json:"replyTo"`
}

// Snapshot is the full replacement list of online user ids.
type Snapshot struct {
	UserIDs []string  `json:"userIds"`
	SentAt  time.Time `json:"sentAt"`
}

func PublishEvent(t domain.Transport, event *domain.PresenceEvent) error {
	if err := t.Publish(PresenceTopic, event); err != nil {
		return fmt.Errorf("publish presence event: %w", err)
	}

	return nil
}

func PublishHeartbeat(t domain.Transport, userID string) error {
	beat := domain.Heartbeat{
		UserID: userID,
		SentAt: time.Now(),
	}

	if err := t.Publish(HeartbeatTopic, beat); err != nil {
		return fmt.Errorf("publish heartbeat: %w", err)
	}

	return nil
}

func RequestSnapshot(t domain.Transport, replyTo string) error {
	req := SnapshotRequest{ReplyTo: replyTo}

	if err := t.Publish(RequestTopic, req); err != nil {
		return fmt.Errorf("publish snapshot request: %w", err)
	}

	return nil
}

func SendSnapshot(t domain.Transport, replyTo string, userIDs []string) error {
	snap := Snapshot{
		UserIDs: userIDs,
		SentAt:  time.Now(),
	}

	if err := t.PublishTo(replyTo, snap); err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}

	return nil
}

func DecodeEvent(body []byte) (*domain.PresenceEvent, error) {
	var event domain.PresenceEvent

	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("json decode presence event: %w", err)
	}

	if event.UserID == "" {
		return nil, fmt.Errorf("presence event without user id")
	}

	return &event, nil
}

func DecodeSnapshot(body []byte) (*Snapshot, error) {
	var snap Snapshot

	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("json decode snapshot: %w", err)
	}

	return &snap, nil
}

func DecodeSnapshotRequest(body []byte) (*SnapshotRequest, error) {
	var req SnapshotRequest

	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("json decode snapshot request: %w", err)
	}

	if req.ReplyTo == "" {
		return nil, fmt.Errorf("snapshot request without reply queue")
	}

	return &req, nil
}

func DecodeHeartbeat(body []byte) (*domain.Heartbeat, error) {
	var beat domain.Heartbeat

	if err := json.Unmarshal(body, &beat); err != nil {
		return nil, fmt.Errorf("json decode heartbeat: %w", err)
	}

	if beat.UserID == "" {
		return nil, fmt.Errorf("heartbeat without user id")
	}

	return &beat, nil
}
