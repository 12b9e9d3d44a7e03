package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyengiapalth/flowx-sync/domain"
)

func TestDecodeEventRequiresUserID(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"status":"ONLINE"}`))
	require.Error(t, err)

	event, err := DecodeEvent([]byte(`{"userId":"7","status":"ONLINE"}`))
	require.NoError(t, err)
	assert.Equal(t, "7", event.UserID)
	assert.True(t, event.Online())
}

func TestDecodeEventRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeEvent([]byte(`{`))
	require.Error(t, err)
}

func TestDecodeSnapshotRequestRequiresReplyQueue(t *testing.T) {
	_, err := DecodeSnapshotRequest([]byte(`{"replyTo":""}`))
	require.Error(t, err)

	req, err := DecodeSnapshotRequest([]byte(`{"replyTo":"reply.1"}`))
	require.NoError(t, err)
	assert.Equal(t, "reply.1", req.ReplyTo)
}

func TestDecodeHeartbeatRequiresUserID(t *testing.T) {
	_, err := DecodeHeartbeat([]byte(`{}`))
	require.Error(t, err)

	beat, err := DecodeHeartbeat([]byte(`{"userId":"3","sentAt":"2026-03-01T12:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "3", beat.UserID)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), beat.SentAt)
}

func TestDecodeSnapshotAcceptsEmptySet(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"userIds":[]}`))
	require.NoError(t, err)
	assert.Empty(t, snap.UserIDs)
}

func TestSnapshotRoundTripThroughTransport(t *testing.T) {
	transport := &captureTransport{}

	require.NoError(t, SendSnapshot(transport, "reply.9", []string{"1", "2"}))
	require.Equal(t, "reply.9", transport.queue)

	snap, err := DecodeSnapshot(transport.body)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, snap.UserIDs)
}

type captureTransport struct {
	queue string
	body  []byte
}

func (c *captureTransport) Connected() bool { return true }

func (c *captureTransport) Subscribe(topic string, h domain.MessageHandler) (domain.Subscription, error) {
	return nil, nil
}

func (c *captureTransport) SubscribeReply(h domain.MessageHandler) (string, domain.Subscription, error) {
	return "", nil, nil
}

func (c *captureTransport) Publish(topic string, body any) error { return nil }

func (c *captureTransport) PublishTo(queue string, body any) error {
	c.queue = queue

	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	c.body = encoded

	return nil
}

func (c *captureTransport) Close() {}
