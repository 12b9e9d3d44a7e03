package use_case

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/queue"
)

type updatePresence struct {
	store     domain.PresenceStore
	transport domain.Transport
}

// Execute records the transition in the store and broadcasts the delta so
// every tracker applies it incrementally.
func (uc *updatePresence) Execute(ctx context.Context, event *domain.PresenceEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var err error
	if event.Online() {
		err = uc.store.SetOnline(ctx, event.UserID)
	} else {
		err = uc.store.SetOffline(ctx, event.UserID)
	}

	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if err = queue.PublishEvent(uc.transport, event); err != nil {
		return fmt.Errorf("failed to publish presence event: %w", err)
	}

	return nil
}

func NewUpdatePresence(
	store domain.PresenceStore,
	transport domain.Transport,
) *updatePresence {
	return &updatePresence{
		store:     store,
		transport: transport,
	}
}
