package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SevenDay/internal/model"
)

type fakePublisher struct {
	err   error
	calls []model.PublicationRetryMessage
}

func (f *fakePublisher) RetryPublication(ctx context.Context, msg model.PublicationRetryMessage) error {
	f.calls = append(f.calls, msg)
	return f.err
}

type fakeMarker struct {
	processing map[string]bool
	processed  map[string]bool
}

func newFakeMarker() *fakeMarker {
	return &fakeMarker{processing: map[string]bool{}, processed: map[string]bool{}}
}

func (m *fakeMarker) TryMarkProcessing(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if m.processing[id] || m.processed[id] {
		return false, nil
	}
	m.processing[id] = true
	return true, nil
}

func (m *fakeMarker) Unmark(ctx context.Context, id string) error {
	delete(m.processing, id)
	return nil
}

func (m *fakeMarker) MarkProcessed(ctx context.Context, id string, ttl time.Duration) error {
	m.processed[id] = true
	return nil
}

const retryBody = `{"message_id":"pub_retry_1","report_id":"9001","participant_id":"7","locale":"en","attempt":2}`

func TestPublicationRetryHandler(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	marker := newFakeMarker()
	handle := PublicationRetryHandler(pub, marker)

	require.NoError(t, handle(ctx, []byte(retryBody)))
	require.Len(t, pub.calls, 1)
	assert.Equal(t, int64(9001), pub.calls[0].ReportID)
	assert.Equal(t, 2, pub.calls[0].Attempt)
	assert.True(t, marker.processed["pub_retry_1"])

	// 重复投递直接跳过
	require.NoError(t, handle(ctx, []byte(retryBody)))
	assert.Len(t, pub.calls, 1)
}

func TestPublicationRetryHandler_FailureUnmarks(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("db down")}
	marker := newFakeMarker()
	handle := PublicationRetryHandler(pub, marker)

	err := handle(ctx, []byte(retryBody))
	require.Error(t, err)
	assert.False(t, marker.processing["pub_retry_1"])
	assert.False(t, marker.processed["pub_retry_1"])

	// 重新入队后可以再次处理
	pub.err = nil
	require.NoError(t, handle(ctx, []byte(retryBody)))
	assert.Len(t, pub.calls, 2)
}

func TestPublicationRetryHandler_DropsMalformed(t *testing.T) {
	pub := &fakePublisher{}
	handle := PublicationRetryHandler(pub, nil)

	require.NoError(t, handle(context.Background(), []byte("{not json")))
	assert.Empty(t, pub.calls)
}
