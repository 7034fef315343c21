package producer

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-presence/internal/messaging/kafka"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeOutboxRepo struct {
	pending    []kafka.OutboxEvent
	listErr    error
	markedSent []string
	failed     map[string]string
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return f.pending, f.listErr
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error {
	f.markedSent = append(f.markedSent, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	return nil
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error { return nil }

type fakePublisher struct {
	published []kafka.OutboxEvent
	failIDs   map[string]error
}

func (f *fakePublisher) Publish(ctx context.Context, event kafka.OutboxEvent) error {
	if err, ok := f.failIDs[event.ID]; ok {
		return err
	}
	f.published = append(f.published, event)
	return nil
}

func TestProcessPendingEvents_MarksSentOnPublish(t *testing.T) {
	repo := &fakeOutboxRepo{
		pending: []kafka.OutboxEvent{
			{ID: "e1", Topic: "presence.day.updated.v1", Payload: []byte(`{}`)},
			{ID: "e2", Topic: "presence.day.updated.v1", Payload: []byte(`{}`)},
		},
	}
	pub := &fakePublisher{}

	err := processPendingEvents(context.Background(), repo, pub, zap.NewNop())
	assert.NoError(t, err)
	assert.Len(t, pub.published, 2)
	assert.Equal(t, []string{"e1", "e2"}, repo.markedSent)
	assert.Empty(t, repo.failed)
}

func TestProcessPendingEvents_MarksFailedAndContinues(t *testing.T) {
	repo := &fakeOutboxRepo{
		pending: []kafka.OutboxEvent{
			{ID: "e1", Topic: "presence.day.updated.v1", Payload: []byte(`{}`)},
			{ID: "e2", Topic: "presence.day.updated.v1", Payload: []byte(`{}`)},
			{ID: "e3", Topic: "presence.day.updated.v1", Payload: []byte(`{}`)},
		},
	}
	pub := &fakePublisher{
		failIDs: map[string]error{"e2": errors.New("broker unreachable")},
	}

	err := processPendingEvents(context.Background(), repo, pub, zap.NewNop())
	assert.NoError(t, err)

	// one broken event does not block the rest of the batch
	assert.Equal(t, []string{"e1", "e3"}, repo.markedSent)
	assert.Equal(t, "broker unreachable", repo.failed["e2"])
}

func TestProcessPendingEvents_ListError(t *testing.T) {
	repo := &fakeOutboxRepo{listErr: errors.New("db down")}
	pub := &fakePublisher{}

	err := processPendingEvents(context.Background(), repo, pub, zap.NewNop())
	assert.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestProcessPendingEvents_NoPendingIsNoop(t *testing.T) {
	repo := &fakeOutboxRepo{}
	pub := &fakePublisher{}

	err := processPendingEvents(context.Background(), repo, pub, zap.NewNop())
	assert.NoError(t, err)
	assert.Empty(t, pub.published)
	assert.Empty(t, repo.markedSent)
}
