package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/niteshmahajan-63/thewell-checkout/internal/domain/provider"
	"github.com/niteshmahajan-63/thewell-checkout/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// loopbackRedis delivers published messages to its single subscriber.
type loopbackRedis struct {
	messages     chan messaging.Message
	dropped      chan struct{}
	publishErr   error
	subscribeErr error
	published    int
}

func newLoopbackRedis() *loopbackRedis {
	return &loopbackRedis{
		messages: make(chan messaging.Message, 8),
		dropped:  make(chan struct{}),
	}
}

func (l *loopbackRedis) Publish(ctx context.Context, channel string, message interface{}) error {
	if l.publishErr != nil {
		return l.publishErr
	}
	l.published++
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}
	l.messages <- messaging.Message{Channel: channel, Payload: payload, Time: time.Now()}
	return nil
}

func (l *loopbackRedis) Subscribe(ctx context.Context, channel string) (<-chan messaging.Message, error) {
	if l.subscribeErr != nil {
		return nil, l.subscribeErr
	}
	out := make(chan messaging.Message)
	go func() {
		defer close(out)
		for {
			select {
			case msg := <-l.messages:
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			case <-l.dropped:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (l *loopbackRedis) Close() error { return nil }

func TestRedisRelay_DeliversThroughHub(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	redis := newLoopbackRedis()
	relay := NewRedisRelay(redis, "checkout:payments", hub, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	require.Eventually(t, relay.Subscribed, 2*time.Second, 10*time.Millisecond)

	s := hub.NewSession()
	hub.Join(s, "rec_1")

	require.NoError(t, relay.Emit(ctx, "rec_1", provider.EventPaymentFailed, provider.PaymentFailedPayload{
		PaymentID: "pi_1",
		Error:     "declined",
	}))

	select {
	case raw := <-s.Send():
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, "payment_failed", frame.Event)
		assert.JSONEq(t, `{"paymentId":"pi_1","error":"declined"}`, string(frame.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("relayed frame not delivered")
	}
	assert.Equal(t, 1, redis.published)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestRedisRelay_PublishFailure(t *testing.T) {
	redis := newLoopbackRedis()
	relay := NewRedisRelay(redis, "checkout:payments", NewHub(1, zap.NewNop()), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relay.Run(ctx)
	require.Eventually(t, relay.Subscribed, 2*time.Second, 10*time.Millisecond)

	redis.publishErr = errors.New("connection refused")
	err := relay.Emit(ctx, "rec_1", provider.EventPaymentSucceeded, provider.PaymentSucceededPayload{PaymentID: "pi_1"})
	assert.ErrorIs(t, err, redis.publishErr)
}

func expectFrame(t *testing.T, s *Session, event string) {
	t.Helper()
	select {
	case raw := <-s.Send():
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, event, frame.Event)
	case <-time.After(2 * time.Second):
		t.Fatalf("%s frame not delivered", event)
	}
}

func TestRedisRelay_SubscribeFailureFallsBackToHub(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	redis := newLoopbackRedis()
	redis.subscribeErr = errors.New("NOAUTH Authentication required")
	relay := NewRedisRelay(redis, "checkout:payments", hub, zap.NewNop())

	err := relay.Run(context.Background())
	assert.ErrorIs(t, err, redis.subscribeErr)
	assert.False(t, relay.Subscribed())

	s := hub.NewSession()
	hub.Join(s, "rec_1")

	require.NoError(t, relay.Emit(context.Background(), "rec_1", provider.EventPaymentSucceeded, provider.PaymentSucceededPayload{PaymentID: "pi_1"}))
	expectFrame(t, s, "payment_succeeded")
	assert.Equal(t, 0, redis.published)
}

func TestRedisRelay_ClosedSubscriptionFallsBackToHub(t *testing.T) {
	hub := NewHub(4, zap.NewNop())
	redis := newLoopbackRedis()
	relay := NewRedisRelay(redis, "checkout:payments", hub, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- relay.Run(context.Background()) }()
	require.Eventually(t, relay.Subscribed, 2*time.Second, 10*time.Millisecond)

	close(redis.dropped)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrRelaySubscriptionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
	assert.False(t, relay.Subscribed())

	s := hub.NewSession()
	hub.Join(s, "rec_1")

	require.NoError(t, relay.Emit(context.Background(), "rec_1", provider.EventPaymentFailed, provider.PaymentFailedPayload{PaymentID: "pi_1"}))
	expectFrame(t, s, "payment_failed")
	assert.Equal(t, 0, redis.published)
}
