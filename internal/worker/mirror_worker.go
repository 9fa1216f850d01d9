package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"privatechef/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MirrorTask is one reservation waiting to be copied to the spreadsheet.
type MirrorTask struct {
	Record     *models.ReservationRecord `json:"record"`
	RetryCount int                       `json:"retry_count"`
	LastError  string                    `json:"last_error,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// ReservationSheet is the spreadsheet side of the mirror.
type ReservationSheet interface {
	AppendReservation(ctx context.Context, record *models.ReservationRecord) error
}

// MirrorWorker copies accepted reservations into the chef's spreadsheet.
// Tasks go through redis when available and an in-memory channel otherwise.
// Failed tasks are retried with backoff and dead-lettered after MaxRetries.
type MirrorWorker struct {
	sheet         ReservationSheet
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan MirrorTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	logger        *zerolog.Logger

	mu         sync.Mutex
	deadLetter []MirrorTask
	wg         sync.WaitGroup
}

// NewMirrorWorker builds a worker with sane defaults.
func NewMirrorWorker(sheet ReservationSheet, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *MirrorWorker {
	if retry == (RetryPolicy{}) {
		retry = DefaultRetryPolicy()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &MirrorWorker{
		sheet:         sheet,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan MirrorTask, models.WorkerQueueSize),
		redisQueueKey: "mirror:queue",
		deadLetterKey: "mirror:deadletter",
		pollInterval:  time.Second,
		logger:        logger,
	}
}

// EnqueueReservation schedules record for mirroring.
func (w *MirrorWorker) EnqueueReservation(ctx context.Context, record *models.ReservationRecord) error {
	if record == nil || record.ID == "" {
		return errors.New("reservation id is required")
	}
	return w.enqueue(ctx, MirrorTask{Record: record, CreatedAt: time.Now()})
}

func (w *MirrorWorker) enqueue(ctx context.Context, task MirrorTask) error {
	if w.redis != nil {
		err := w.pushRedis(ctx, w.redisQueueKey, task)
		if err == nil {
			return nil
		}
		w.logger.Warn().Err(err).Msg("mirror_worker: redis push failed, fallback to memory queue")
	}

	select {
	case w.queue <- task:
		return nil
	default:
		return fmt.Errorf("mirror queue is full, reservation %s dropped", task.Record.ID)
	}
}

// Start runs the main loop until ctx is done.
func (w *MirrorWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("mirror_worker: started")
	defer w.logger.Info().Msg("mirror_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		if w.redis == nil {
			select {
			case <-ctx.Done():
			case t := <-w.queue:
				w.processTask(ctx, &t)
			case <-time.After(w.pollInterval):
			}
		}
	}
}

func (w *MirrorWorker) tryLocalQueue() (MirrorTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return MirrorTask{}, false
	}
}

func (w *MirrorWorker) tryRedis(ctx context.Context) (MirrorTask, bool) {
	if w.redis == nil {
		return MirrorTask{}, false
	}
	res, err := w.redis.BRPop(ctx, w.pollInterval, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			w.logger.Error().Err(err).Msg("mirror_worker: redis BRPOP error")
		}
		return MirrorTask{}, false
	}
	if len(res) != 2 {
		return MirrorTask{}, false
	}
	var task MirrorTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Error().Err(err).Msg("mirror_worker: decode redis task")
		return MirrorTask{}, false
	}
	return task, true
}

func (w *MirrorWorker) processTask(ctx context.Context, task *MirrorTask) {
	if task.Record == nil {
		w.failTask(ctx, task, errors.New("reservation payload missing"))
		return
	}

	if err := w.sheet.AppendReservation(ctx, task.Record); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	w.logger.Info().Str("reservation_id", task.Record.ID).Int("attempt", task.RetryCount+1).Msg("mirror_worker: reservation mirrored")
}

func (w *MirrorWorker) retryOrFail(ctx context.Context, task *MirrorTask, cause error) {
	task.RetryCount++
	task.LastError = cause.Error()
	if task.RetryCount >= w.retryPolicy.MaxRetries {
		w.failTask(ctx, task, cause)
		return
	}

	delay := w.retryPolicy.NextDelay(task.RetryCount)
	w.logger.Warn().Err(cause).
		Str("reservation_id", task.Record.ID).
		Int("retry", task.RetryCount).
		Dur("delay", delay).
		Msg("mirror_worker: append failed, retry scheduled")

	retry := *task
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-ctx.Done():
			w.pushDeadLetter(context.Background(), &retry)
		case <-time.After(delay):
			if err := w.enqueue(ctx, retry); err != nil {
				w.logger.Error().Err(err).Msg("mirror_worker: requeue failed")
				w.pushDeadLetter(ctx, &retry)
			}
		}
	}()
}

func (w *MirrorWorker) failTask(ctx context.Context, task *MirrorTask, cause error) {
	task.LastError = cause.Error()
	id := ""
	if task.Record != nil {
		id = task.Record.ID
	}
	w.logger.Error().Err(cause).Str("reservation_id", id).Int("retries", task.RetryCount).Msg("mirror_worker: giving up")
	w.pushDeadLetter(ctx, task)
}

func (w *MirrorWorker) pushRedis(ctx context.Context, key string, task MirrorTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, key, data).Err()
}

func (w *MirrorWorker) pushDeadLetter(ctx context.Context, task *MirrorTask) {
	if w.redis != nil {
		err := w.pushRedis(ctx, w.deadLetterKey, *task)
		if err == nil {
			return
		}
		w.logger.Error().Err(err).Msg("mirror_worker: deadletter push failed")
	}
	w.mu.Lock()
	w.deadLetter = append(w.deadLetter, *task)
	w.mu.Unlock()
}

// DeadLetters returns the tasks dead-lettered in memory.
func (w *MirrorWorker) DeadLetters() []MirrorTask {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]MirrorTask(nil), w.deadLetter...)
}
