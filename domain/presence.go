package domain

import (
	"context"
	"time"
)

type PresenceStatus string

const (
	PresenceStatusOnline  PresenceStatus = "ONLINE"
	PresenceStatusOffline PresenceStatus = "OFFLINE"
)

// PresenceEvent is one user's online/offline transition as delivered on the
// broadcast topic.
type PresenceEvent struct {
	UserID    string         `json:"userId"`
	Status    PresenceStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	UserName  string         `json:"userName,omitempty"`
	UserEmail string         `json:"userEmail,omitempty"`
}

func (e PresenceEvent) Online() bool {
	return e.Status == PresenceStatusOnline
}

type Heartbeat struct {
	UserID string    `json:"userId"`
	SentAt time.Time `json:"sentAt"`
}

// PresenceObserver receives the full online set after every change. event is
// nil when the change came from a snapshot rather than a single transition.
type PresenceObserver func(online []string, event *PresenceEvent)

// PresenceStore is the authoritative online-user registry behind the
// snapshot responder. Entries expire unless refreshed.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID string) error
	Refresh(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
	OnlineUserIDs(ctx context.Context) ([]string, error)
}

type UpdatePresenceUseCase interface {
	Execute(ctx context.Context, event *PresenceEvent) error
}
