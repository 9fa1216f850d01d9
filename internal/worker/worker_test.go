package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"privatechef/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSheet struct {
	mu       sync.Mutex
	appended []string
	failures int
}

func (f *fakeSheet) AppendReservation(ctx context.Context, record *models.ReservationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("sheets unavailable")
	}
	f.appended = append(f.appended, record.ID)
	return nil
}

func (f *fakeSheet) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.appended...)
}

func record(id string) *models.ReservationRecord {
	return &models.ReservationRecord{ID: id, UserID: "u", ReservationRequest: models.ReservationRequest{Name: "Ann"}}
}

func fastRetry(max int) RetryPolicy {
	return RetryPolicy{MaxRetries: max, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestEnqueueRequiresID(t *testing.T) {
	w := NewMirrorWorker(&fakeSheet{}, nil, RetryPolicy{}, nil)
	assert.Error(t, w.EnqueueReservation(context.Background(), &models.ReservationRecord{}))
	assert.Error(t, w.EnqueueReservation(context.Background(), nil))
}

func TestProcessTaskSuccess(t *testing.T) {
	sheet := &fakeSheet{}
	w := NewMirrorWorker(sheet, nil, RetryPolicy{}, nil)
	ctx := context.Background()

	require.NoError(t, w.EnqueueReservation(ctx, record("r1")))
	task, ok := w.tryLocalQueue()
	require.True(t, ok)

	w.processTask(ctx, &task)
	assert.Equal(t, []string{"r1"}, sheet.ids())
	assert.Empty(t, w.DeadLetters())
}

func TestRetryThenSucceed(t *testing.T) {
	sheet := &fakeSheet{failures: 2}
	w := NewMirrorWorker(sheet, nil, fastRetry(5), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Start(ctx)
	require.NoError(t, w.EnqueueReservation(ctx, record("r2")))

	assert.Eventually(t, func() bool { return len(sheet.ids()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, w.DeadLetters())
}

func TestDeadLetterAfterMaxRetries(t *testing.T) {
	sheet := &fakeSheet{failures: 100}
	w := NewMirrorWorker(sheet, nil, fastRetry(3), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Start(ctx)
	require.NoError(t, w.EnqueueReservation(ctx, record("r3")))

	assert.Eventually(t, func() bool { return len(w.DeadLetters()) == 1 }, 2*time.Second, 5*time.Millisecond)
	dead := w.DeadLetters()[0]
	assert.Equal(t, "r3", dead.Record.ID)
	assert.Equal(t, 3, dead.RetryCount)
	assert.Equal(t, "sheets unavailable", dead.LastError)
	assert.Empty(t, sheet.ids())
}

func TestRedisQueue(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	sheet := &fakeSheet{}
	w := NewMirrorWorker(sheet, client, fastRetry(2), nil)
	w.pollInterval = 10 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, w.EnqueueReservation(ctx, record("r4")))
	n, err := client.LLen(ctx, "mirror:queue").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	task, ok := w.tryRedis(ctx)
	require.True(t, ok)
	assert.Equal(t, "r4", task.Record.ID)

	w.processTask(ctx, &task)
	assert.Equal(t, []string{"r4"}, sheet.ids())
}

func TestRedisDeadLetter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	w := NewMirrorWorker(&fakeSheet{}, client, fastRetry(1), nil)
	ctx := context.Background()

	task := MirrorTask{Record: nil, CreatedAt: time.Now()}
	w.processTask(ctx, &task)

	items, err := client.LRange(ctx, "mirror:deadletter", 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, items, 1)

	var dead MirrorTask
	require.NoError(t, json.Unmarshal([]byte(items[0]), &dead))
	assert.Equal(t, "reservation payload missing", dead.LastError)
	assert.Empty(t, w.DeadLetters())
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, MaxDelay: 5 * time.Second, BackoffFactor: 2}
	assert.Equal(t, time.Second, p.NextDelay(0))
	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 5*time.Second, p.NextDelay(4))

	assert.Equal(t, time.Second, RetryPolicy{}.NextDelay(1))
}
