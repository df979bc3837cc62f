package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-hrpayroll/internal/events"
	incrementerrors "go-hrpayroll/internal/increment/errors"
	"go-hrpayroll/internal/messaging/kafka/consumer"

	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []kafkago.Message
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		f.cancel()
		return kafkago.Message{}, context.Canceled
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

type fakeCreator struct {
	errs  map[string]error
	calls []string
}

func (f *fakeCreator) CreateRecord(ctx context.Context, event events.EmployeeCreatedEvent) error {
	f.calls = append(f.calls, event.EmployeeID)
	err := f.errs[event.EmployeeID]
	delete(f.errs, event.EmployeeID)
	return err
}

func message(t *testing.T, event events.EmployeeCreatedEvent) kafkago.Message {
	t.Helper()
	b, err := json.Marshal(event)
	assert.NoError(t, err)
	return kafkago.Message{Key: []byte(event.EmployeeID), Value: b}
}

func TestConsumeEmployeeLifecycle(t *testing.T) {
	defer consumer.SetRetryBackoff(time.Millisecond)()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	created := events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "ok"}
	duplicate := events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "dup"}
	invalid := events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "bad"}
	transient := events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "retry"}

	reader := &fakeReader{
		messages: []kafkago.Message{
			{Value: []byte("not json")},
			message(t, created),
			message(t, duplicate),
			message(t, invalid),
			message(t, transient),
		},
		cancel: cancel,
	}
	creator := &fakeCreator{errs: map[string]error{
		"dup":   &pgconn.PgError{Code: "23505", ConstraintName: "uq_salary_increment_employee"},
		"bad":   incrementerrors.ErrInvalidEmployeeID,
		"retry": errors.New("connection reset"),
	}}

	consumer.ConsumeEmployeeLifecycle(ctx, reader, creator, zap.NewNop())

	// the transient failure is retried in place and then committed
	assert.Equal(t, []string{"ok", "dup", "bad", "retry", "retry"}, creator.calls)
	assert.Len(t, reader.committed, 5)
	assert.Equal(t, "retry", string(reader.committed[4].Key))
}

type fakeSeeder struct {
	errs  map[string]error
	calls []string
}

func (f *fakeSeeder) SeedFromEvent(ctx context.Context, event events.EmployeeCreatedEvent) error {
	f.calls = append(f.calls, event.EmployeeID)
	err := f.errs[event.EmployeeID]
	delete(f.errs, event.EmployeeID)
	return err
}

func TestConsumeSalarySeed(t *testing.T) {
	defer consumer.SetRetryBackoff(time.Millisecond)()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		messages: []kafkago.Message{
			message(t, events.EmployeeCreatedEvent{EventType: "leave.status_changed", EmployeeID: "other"}),
			message(t, events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "ok"}),
			message(t, events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "dup"}),
			message(t, events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "wrong-constraint"}),
		},
		cancel: cancel,
	}
	seeder := &fakeSeeder{errs: map[string]error{
		"dup":              &pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_salary_period"},
		"wrong-constraint": &pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"},
	}}

	consumer.ConsumeSalarySeed(ctx, reader, seeder, zap.NewNop())

	// foreign event types are committed without reaching the seeder; a
	// violation of another constraint is not a duplicate and is retried
	assert.Equal(t, []string{"ok", "dup", "wrong-constraint", "wrong-constraint"}, seeder.calls)
	assert.Len(t, reader.committed, 4)
}

func TestConsumeEmployeeLifecycle_TransientFailureBlocksLaterOffsets(t *testing.T) {
	defer consumer.SetRetryBackoff(time.Millisecond)()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := message(t, events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "retry"})
	first.Offset = 0
	second := message(t, events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "ok"})
	second.Offset = 1

	reader := &fakeReader{messages: []kafkago.Message{first, second}, cancel: cancel}
	creator := &fakeCreator{errs: map[string]error{"retry": errors.New("connection reset by peer")}}

	consumer.ConsumeEmployeeLifecycle(ctx, reader, creator, zap.NewNop())

	assert.Equal(t, []string{"retry", "retry", "ok"}, creator.calls)
	require.Len(t, reader.committed, 2)
	assert.Equal(t, int64(0), reader.committed[0].Offset)
	assert.Equal(t, "retry", string(reader.committed[0].Key))
	assert.Equal(t, int64(1), reader.committed[1].Offset)
}

type failingCreator struct {
	calls  int
	cancel context.CancelFunc
}

func (f *failingCreator) CreateRecord(ctx context.Context, event events.EmployeeCreatedEvent) error {
	f.calls++
	if f.calls == 3 {
		f.cancel()
	}
	return errors.New("database is down")
}

func TestConsumeEmployeeLifecycle_StopsRetryingOnShutdown(t *testing.T) {
	defer consumer.SetRetryBackoff(time.Millisecond)()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		messages: []kafkago.Message{
			message(t, events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "stuck"}),
			message(t, events.EmployeeCreatedEvent{EventType: events.EmployeeCreatedType, EmployeeID: "next"}),
		},
		cancel: cancel,
	}
	creator := &failingCreator{cancel: cancel}

	consumer.ConsumeEmployeeLifecycle(ctx, reader, creator, zap.NewNop())

	assert.Equal(t, 3, creator.calls)
	assert.Empty(t, reader.committed)
	assert.Len(t, reader.messages, 1)
}
