package websocket_buffer

import (
	"log"

	"github.com/nguyengiapalth/flowx-sync/internal"
)

type Connection interface {
	WriteJSON(any) error
}

// WriteBuffer serializes concurrent presence pushes onto one websocket
// connection. Writers never touch the connection directly.
type WriteBuffer struct {
	conn   Connection
	buffer chan any
}

func (b *WriteBuffer) DeliverToClient() {
	var err error

	for body := range b.buffer {
		if err = b.conn.WriteJSON(body); err != nil {
			log.Printf("err: write json: %s", err)
		}
	}

	internal.LogGoroutineClosed("WriteBuffer.DeliverToClient")
}

func (b *WriteBuffer) Write(body any) {
	defer func() {
		// Write may race a Close; a push lost during teardown is fine.
		if recover() != nil {
			log.Println("dropped write to closed buffer")
		}
	}()

	b.buffer <- body
}

func (b *WriteBuffer) Close() {
	close(b.buffer)
}

func New(conn Connection) *WriteBuffer {
	return &WriteBuffer{
		conn:   conn,
		buffer: make(chan any, 16),
	}
}
