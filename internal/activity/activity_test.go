package activity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/replywise/replywise/internal/auth"
	inats "github.com/replywise/replywise/internal/nats"
)

type memoryRepo struct {
	entries   []Entry
	insertErr error
	lastQuery ListParams
}

func (m *memoryRepo) Insert(_ context.Context, e *Entry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memoryRepo) ListByUser(_ context.Context, userID uuid.UUID, params ListParams) ([]Entry, int64, error) {
	m.lastQuery = params
	var out []Entry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

type fakeMsg struct {
	jetstream.Msg
	data   []byte
	acked  bool
	naked  bool
	termed bool
}

func (m *fakeMsg) Data() []byte { return m.data }
func (m *fakeMsg) Ack() error { m.acked = true; return nil }
func (m *fakeMsg) Nak() error { m.naked = true; return nil }
func (m *fakeMsg) Term() error { m.termed = true; return nil }

func eventMsg(t *testing.T, e inats.ReplyGeneratedEvent) *fakeMsg {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return &fakeMsg{data: data}
}

func TestConsumer_RecordsEvent(t *testing.T) {
	repo := &memoryRepo{}
	c := NewConsumer(repo, nil)

	replyID := uuid.New()
	event := inats.ReplyGeneratedEvent{
		EventID:   uuid.New(),
		ReplyID:   &replyID,
		UserID:    uuid.New(),
		PresetID:  "concise",
		Length:    "short",
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Persisted: true,
		Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	msg := eventMsg(t, event)

	c.handle(context.Background(), msg)

	assert.True(t, msg.acked)
	require.Len(t, repo.entries, 1)
	got := repo.entries[0]
	assert.Equal(t, event.EventID, got.ID)
	assert.Equal(t, event.UserID, got.UserID)
	assert.Equal(t, &replyID, got.ReplyID)
	assert.Equal(t, "concise", got.PresetID)
	assert.True(t, got.Persisted)
	assert.Equal(t, event.Timestamp, got.CreatedAt)
}

func TestConsumer_MalformedPayloadIsTerminated(t *testing.T) {
	repo := &memoryRepo{}
	msg := &fakeMsg{data: []byte("{not json")}

	NewConsumer(repo, nil).handle(context.Background(), msg)

	assert.True(t, msg.termed)
	assert.False(t, msg.acked)
	assert.Empty(t, repo.entries)
}

func TestConsumer_StoreFailureIsRedelivered(t *testing.T) {
	repo := &memoryRepo{insertErr: errors.New("db down")}
	msg := eventMsg(t, inats.ReplyGeneratedEvent{UserID: uuid.New()})

	NewConsumer(repo, nil).handle(context.Background(), msg)

	assert.True(t, msg.naked)
	assert.False(t, msg.acked)
}

func TestEntryFromEvent_AssignsMissingID(t *testing.T) {
	e := entryFromEvent(inats.ReplyGeneratedEvent{UserID: uuid.New()})
	assert.NotEqual(t, uuid.Nil, e.ID)
}

func TestHandler_List(t *testing.T) {
	userID := uuid.New()
	repo := &memoryRepo{entries: []Entry{
		{ID: uuid.New(), UserID: userID, PresetID: "friendly"},
		{ID: uuid.New(), UserID: uuid.New(), PresetID: "casual"},
	}}
	h := NewHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/activity?preset_id=friendly&page=2&page_size=5&from=2026-01-01T00:00:00Z", nil)
	req = req.WithContext(auth.WithUserClaims(req.Context(), &auth.AccessClaims{UserID: userID.String()}))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data       []Entry `json:"data"`
		TotalCount int64   `json:"total_count"`
		Page       int     `json:"page"`
		PageSize   int     `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.EqualValues(t, 1, body.TotalCount)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 5, body.PageSize)

	assert.Equal(t, "friendly", repo.lastQuery.PresetID)
	require.NotNil(t, repo.lastQuery.From)
	assert.Nil(t, repo.lastQuery.To)
}

func TestHandler_ListRejectsBadTimestamp(t *testing.T) {
	h := NewHandler(&memoryRepo{})

	req := httptest.NewRequest(http.MethodGet, "/activity?to=yesterday", nil)
	req = req.WithContext(auth.WithUserClaims(req.Context(), &auth.AccessClaims{UserID: uuid.NewString()}))
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ListRequiresClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(&memoryRepo{}).List(rec, httptest.NewRequest(http.MethodGet, "/activity", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeBatch struct {
	ch  chan jetstream.Msg
	err error
}

func (b *fakeBatch) Messages() <-chan jetstream.Msg { return b.ch }
func (b *fakeBatch) Error() error { return b.err }

type scriptedFetcher struct {
	batches [][]jetstream.Msg
	cancel  context.CancelFunc
}

func (f *scriptedFetcher) Fetch(int, ...jetstream.FetchOpt) (jetstream.MessageBatch, error) {
	if len(f.batches) == 0 {
		f.cancel()
		return nil, errors.New("nats: timeout")
	}
	next := f.batches[0]
	f.batches = f.batches[1:]

	ch := make(chan jetstream.Msg, len(next))
	for _, m := range next {
		ch <- m
	}
	close(ch)
	return &fakeBatch{ch: ch}, nil
}

func TestConsumer_StartDrainsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := eventMsg(t, inats.ReplyGeneratedEvent{EventID: uuid.New(), UserID: uuid.New()})
	second := eventMsg(t, inats.ReplyGeneratedEvent{EventID: uuid.New(), UserID: uuid.New()})
	repo := &memoryRepo{}
	fetcher := &scriptedFetcher{
		batches: [][]jetstream.Msg{{first}, {second}},
		cancel:  cancel,
	}

	done := make(chan error, 1)
	go func() { done <- NewConsumer(repo, fetcher).Start(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}

	assert.Len(t, repo.entries, 2)
	assert.True(t, first.acked)
	assert.True(t, second.acked)
}

type failingFetcher struct {
	calls atomic.Int32
}

func (f *failingFetcher) Fetch(int, ...jetstream.FetchOpt) (jetstream.MessageBatch, error) {
	f.calls.Add(1)
	return nil, errors.New("nats: connection closed")
}

func TestConsumer_StartWaitsBetweenFailedFetches(t *testing.T) {
	defer goleak.VerifyNone(t)

	prev := fetchRetryDelay
	fetchRetryDelay = 50 * time.Millisecond
	t.Cleanup(func() { fetchRetryDelay = prev })

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	fetcher := &failingFetcher{}
	require.NoError(t, NewConsumer(&memoryRepo{}, fetcher).Start(ctx))

	assert.LessOrEqual(t, fetcher.calls.Load(), int32(4))
	assert.GreaterOrEqual(t, fetcher.calls.Load(), int32(2))
}

func TestConsumer_StartSurvivesBatchError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := eventMsg(t, inats.ReplyGeneratedEvent{EventID: uuid.New(), UserID: uuid.New()})
	ch := make(chan jetstream.Msg, 1)
	ch <- msg
	close(ch)

	repo := &memoryRepo{}
	fetcher := &batchThenCancel{batch: &fakeBatch{ch: ch, err: errors.New("nats: consumer deleted")}, cancel: cancel}
	require.NoError(t, NewConsumer(repo, fetcher).Start(ctx))

	assert.True(t, msg.acked)
	assert.Len(t, repo.entries, 1)
}

type batchThenCancel struct {
	batch  *fakeBatch
	cancel context.CancelFunc
}

func (f *batchThenCancel) Fetch(int, ...jetstream.FetchOpt) (jetstream.MessageBatch, error) {
	f.cancel()
	return f.batch, nil
}
