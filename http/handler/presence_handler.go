package handler

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nguyengiapalth/flowx-sync/domain"
	"github.com/nguyengiapalth/flowx-sync/http/middleware"
	"github.com/nguyengiapalth/flowx-sync/service"
	"github.com/nguyengiapalth/flowx-sync/websocket_buffer"
)

const (
	pingInterval = 5 * time.Second
	readTimeout  = 35 * time.Second
)

// presencePush is what UI clients receive on every presence change.
type presencePush struct {
	OnlineUserIDs []string              `json:"onlineUserIds"`
	Event         *domain.PresenceEvent `json:"event,omitempty"`
}

type Presence struct {
	upgrader       websocket.Upgrader
	updatePresence domain.UpdatePresenceUseCase
	store          domain.PresenceStore
	tracker        *service.PresenceTracker
}

// WebSocket marks the caller online, streams live presence changes to them
// through a write buffer, and keeps the connection alive with pings. The
// caller goes offline when the socket drops.
func (h *Presence) WebSocket(c *gin.Context) {
	userID := strconv.FormatUint(middleware.GetUserIDFromContext(c), 10)
	ctx := c.Request.Context()

	event := domain.PresenceEvent{
		UserID:    userID,
		Status:    domain.PresenceStatusOnline,
		Timestamp: time.Now(),
	}

	if err := h.updatePresence.Execute(ctx, &event); err != nil {
		abortWithInternalError(c, err)
		return
	}

	defer func() {
		offline := domain.PresenceEvent{
			UserID:    userID,
			Status:    domain.PresenceStatusOffline,
			Timestamp: time.Now(),
		}

		if err := h.updatePresence.Execute(ctx, &offline); err != nil {
			log.Printf("err: update presence: %s", err)
		}
	}()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		abortWithInternalError(c, err)
		return
	}

	defer conn.Close()

	buff := websocket_buffer.New(conn)
	go buff.DeliverToClient()
	defer buff.Close()

	unsubscribe := h.tracker.OnPresenceChange(func(online []string, event *domain.PresenceEvent) {
		buff.Write(presencePush{
			OnlineUserIDs: online,
			Event:         event,
		})
	})
	defer unsubscribe()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		if err := h.store.Refresh(ctx, userID); err != nil {
			log.Printf("err: refresh presence: %s", err)
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		return nil
	})

	stop := make(chan struct{})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer log.Println("Closed ping goroutine")

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingInterval))
				if err != nil && err != websocket.ErrCloseSent {
					log.Printf("err: send ping message: %s", err)
				}
			}
		}
	}()

	for {
		if _, _, err := conn.NextReader(); err != nil {
			if closeErr, is := err.(*websocket.CloseError); is {
				log.Printf("Close message received: [%d] %s", closeErr.Code, closeErr.Text)
			} else {
				log.Printf("err: read message: %s", err)
			}

			break
		}
	}

	close(stop)
	wg.Wait()
}

func NewPresence(
	updatePresence domain.UpdatePresenceUseCase,
	store domain.PresenceStore,
	tracker *service.PresenceTracker,
) *Presence {
	return &Presence{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  128,
			WriteBufferSize: 128,
		},
		updatePresence: updatePresence,
		store:          store,
		tracker:        tracker,
	}
}
