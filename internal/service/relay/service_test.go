package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"contactrelay/internal/model"
	"contactrelay/pkg/config"
)

type fakeTransport struct {
	mu      sync.Mutex
	sent    []*model.MailMessage
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeTransport) Send(_ context.Context, msg *model.MailMessage) error {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeTransport) Host() string { return "smtp.test" }

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeDeduper struct {
	mu       sync.Mutex
	seen     map[string]bool
	released []string
}

func (f *fakeDeduper) AcquireOnce(_ context.Context, handler, fingerprint string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := handler + ":" + fingerprint
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	return true
}

func (f *fakeDeduper) Release(_ context.Context, handler, fingerprint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := handler + ":" + fingerprint
	delete(f.seen, key)
	f.released = append(f.released, key)
}

func (f *fakeDeduper) releasedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.released)
}

var mailCfg = config.MailConfig{Recipient: "owner@example.com", SenderAddress: "relay@example.com"}

func TestRelay_Sent(t *testing.T) {
	transport := &fakeTransport{}
	svc := NewService(transport, mailCfg, nil, zap.NewNop())

	outcome, err := svc.Relay(context.Background(), model.ContactSubmission{
		Name: "Ada", Email: "ada@example.com", Message: "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, outcome)

	require.Equal(t, 1, transport.count())
	msg := transport.sent[0]
	assert.Equal(t, "ada@example.com", msg.From)
	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "New message from Ada", msg.Subject)
}

func TestRelay_TransportFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	transport := &fakeTransport{err: errors.New("535 authentication failed")}
	svc := NewService(transport, mailCfg, nil, zap.New(core))

	_, err := svc.Relay(context.Background(), model.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535 authentication failed")

	require.Equal(t, 1, logs.FilterMessage("Failed to send email").Len())
}

func TestRelay_MissingFieldsStillSends(t *testing.T) {
	transport := &fakeTransport{}
	svc := NewService(transport, mailCfg, nil, zap.NewNop())

	outcome, err := svc.Relay(context.Background(), model.ContactSubmission{Message: "no name, no email"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, outcome)
	require.Equal(t, 1, transport.count())
	assert.Equal(t, "relay@example.com", transport.sent[0].From)
}

func TestRelay_Duplicate(t *testing.T) {
	transport := &fakeTransport{}
	dedup := &fakeDeduper{seen: map[string]bool{}}
	svc := NewService(transport, mailCfg, dedup, zap.NewNop())
	sub := model.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"}

	first, err := svc.Relay(context.Background(), sub)
	require.NoError(t, err)
	second, err := svc.Relay(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSent, first)
	assert.Equal(t, OutcomeDuplicate, second)
	assert.Equal(t, 1, transport.count())
}

func TestRelay_FailureReleasesDedupKey(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	dedup := &fakeDeduper{seen: map[string]bool{}}
	svc := NewService(transport, mailCfg, dedup, zap.NewNop())
	sub := model.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"}

	_, err := svc.Relay(context.Background(), sub)
	require.Error(t, err)
	assert.Equal(t, 1, dedup.releasedCount())

	transport.err = nil
	outcome, err := svc.Relay(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSent, outcome)
}

func TestRelay_CallerGone(t *testing.T) {
	transport := &fakeTransport{block: make(chan struct{}), started: make(chan struct{})}
	svc := NewService(transport, mailCfg, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Relay(ctx, model.ContactSubmission{Name: "Ada"})
		done <- err
	}()

	<-transport.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSendAborted)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Relay did not return after cancellation")
	}
	close(transport.block)
}

// relayAndCancel starts Relay, cancels once the transport is in flight and
// waits for Relay to return.
func relayAndCancel(t *testing.T, svc *Service, transport *fakeTransport, sub model.ContactSubmission) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Relay(ctx, sub)
		done <- err
	}()

	<-transport.started
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrSendAborted)
	case <-time.After(2 * time.Second):
		t.Fatal("Relay did not return after cancellation")
	}
}

func TestRelay_CallerGoneKeepsKeyUntilSendFails(t *testing.T) {
	transport := &fakeTransport{
		err:     errors.New("connection reset"),
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	dedup := &fakeDeduper{seen: map[string]bool{}}
	svc := NewService(transport, mailCfg, dedup, zap.NewNop())

	relayAndCancel(t, svc, transport, model.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"})
	assert.Zero(t, dedup.releasedCount(), "key released while the send was still in flight")

	close(transport.block)
	assert.Eventually(t, func() bool { return dedup.releasedCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestRelay_CallerGoneDeliveredSendKeepsKey(t *testing.T) {
	transport := &fakeTransport{block: make(chan struct{}), started: make(chan struct{})}
	dedup := &fakeDeduper{seen: map[string]bool{}}
	svc := NewService(transport, mailCfg, dedup, zap.NewNop())
	sub := model.ContactSubmission{Name: "Ada", Email: "ada@example.com", Message: "Hello"}

	relayAndCancel(t, svc, transport, sub)
	close(transport.block)
	assert.Eventually(t, func() bool { return transport.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return dedup.releasedCount() > 0 }, 100*time.Millisecond, 10*time.Millisecond)

	// A retry of the delivered message is not sent twice.
	transport.block, transport.started = nil, nil
	outcome, err := svc.Relay(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	assert.Equal(t, 1, transport.count())
}

func TestDispatch_DeliversOneResult(t *testing.T) {
	transport := &fakeTransport{err: errors.New("boom")}
	svc := NewService(transport, mailCfg, nil, zap.NewNop())

	res := <-svc.Dispatch(context.Background(), &model.MailMessage{To: "owner@example.com"})
	assert.EqualError(t, res.Err, "boom")
	assert.GreaterOrEqual(t, res.Duration, time.Duration(0))
}
