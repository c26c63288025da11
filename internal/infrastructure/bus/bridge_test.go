package bus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-notify/internal/infrastructure/logger"
)

type fakeSubscription struct {
	messages chan []byte
	once     sync.Once
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{messages: make(chan []byte, 16)}
}

func (s *fakeSubscription) Messages() <-chan []byte { return s.messages }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() { close(s.messages) })
	return nil
}

// drop simulates a lost transport link without going through Close, so the
// bridge sees the channel close the way a dead connection would look.
func (s *fakeSubscription) drop() {
	s.once.Do(func() { close(s.messages) })
}

type fakeTransport struct {
	mu         sync.Mutex
	subs       []*fakeSubscription
	subErrs    []error // consumed one per Subscribe call
	published  [][]byte
	publishErr error
}

func (t *fakeTransport) Publish(ctx context.Context, topic string, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.publishErr != nil {
		return t.publishErr
	}
	t.published = append(t.published, payload)
	return nil
}

func (t *fakeTransport) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.subErrs) > 0 {
		err := t.subErrs[0]
		t.subErrs = t.subErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	sub := newFakeSubscription()
	t.subs = append(t.subs, sub)
	return sub, nil
}

func (t *fakeTransport) subscription(i int) *fakeSubscription {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i >= len(t.subs) {
		return nil
	}
	return t.subs[i]
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (r *recordingBroadcaster) Broadcast(payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
}

func (r *recordingBroadcaster) received() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.payloads))
	copy(out, r.payloads)
	return out
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBridge_StartFailsWhenTransportDown(t *testing.T) {
	transport := &fakeTransport{subErrs: []error{errors.New("connection refused")}}
	local := &recordingBroadcaster{}
	bridge := NewBridge(transport, local, logger.NewNopLogger())

	err := bridge.Start(context.Background())
	require.Error(t, err)
	assert.False(t, bridge.Connected())
}

func TestBridge_PublishFailsFastWhileDisconnected(t *testing.T) {
	transport := &fakeTransport{}
	local := &recordingBroadcaster{}
	bridge := NewBridge(transport, local, logger.NewNopLogger())

	err := bridge.Publish(context.Background(), []byte(`{"event_type":"message"}`))
	require.ErrorIs(t, err, ErrBusUnavailable)
	assert.Empty(t, transport.published)
}

func TestBridge_PublishWrapsTransportError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := &fakeTransport{}
	local := &recordingBroadcaster{}
	bridge := NewBridge(transport, local, logger.NewNopLogger())
	require.NoError(t, bridge.Start(ctx))

	transport.mu.Lock()
	transport.publishErr = errors.New("broken pipe")
	transport.mu.Unlock()

	err := bridge.Publish(ctx, []byte(`{"event_type":"message"}`))
	require.ErrorIs(t, err, ErrBusUnavailable)
}

func TestBridge_DeliversVerbatimPayloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := &fakeTransport{}
	local := &recordingBroadcaster{}
	bridge := NewBridge(transport, local, logger.NewNopLogger())
	require.NoError(t, bridge.Start(ctx))
	assert.True(t, bridge.Connected())

	payload := []byte(`{"id":"abc","event_type":"user_created","message":"hello"}`)
	transport.subscription(0).messages <- payload

	waitFor(t, func() bool { return len(local.received()) == 1 }, "payload never reached the broadcaster")
	assert.Equal(t, payload, local.received()[0])
}

func TestBridge_CountsAndSkipsMalformedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := &fakeTransport{}
	local := &recordingBroadcaster{}
	bridge := NewBridge(transport, local, logger.NewNopLogger())
	require.NoError(t, bridge.Start(ctx))

	sub := transport.subscription(0)
	sub.messages <- []byte(`not json at all`)
	sub.messages <- []byte(`{}`) // decodes but carries no event type
	sub.messages <- []byte(`{"event_type":"user_deleted","message":"ok"}`)

	waitFor(t, func() bool { return len(local.received()) == 1 }, "valid payload never delivered")
	assert.Equal(t, uint64(2), bridge.MalformedCount())
}

func TestBridge_ReconnectsAfterSubscriptionLoss(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First resubscribe attempt fails, the second succeeds.
	transport := &fakeTransport{subErrs: []error{nil, errors.New("connection reset")}}
	local := &recordingBroadcaster{}
	bridge := NewBridge(transport, local, logger.NewNopLogger())
	require.NoError(t, bridge.Start(ctx))

	transport.subscription(0).drop()

	waitFor(t, func() bool { return transport.subscription(1) != nil }, "bridge never resubscribed")
	waitFor(t, func() bool { return bridge.Connected() }, "bridge never reported connected after reconnect")

	payload := []byte(`{"event_type":"message","message":"back"}`)
	transport.subscription(1).messages <- payload

	waitFor(t, func() bool { return len(local.received()) == 1 }, "payload never delivered after reconnect")
	assert.Equal(t, payload, local.received()[0])
}

func TestBridge_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	transport := &fakeTransport{}
	local := &recordingBroadcaster{}
	bridge := NewBridge(transport, local, logger.NewNopLogger())
	require.NoError(t, bridge.Start(ctx))

	cancel()
	transport.subscription(0).drop()

	waitFor(t, func() bool { return !bridge.Connected() }, "bridge never went disconnected after cancel")
}
