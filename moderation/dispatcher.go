package moderation

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/logging"
	"github.com/linesmerrill/rider-safety-api/models"
)

// Task is a unit of background work. The context carries the task deadline.
type Task func(ctx context.Context)

// TaskQueue runs tasks off the request path. Enqueue never blocks; it reports
// false when the task was dropped.
type TaskQueue interface {
	Enqueue(task Task) bool
}

// WorkerPool is a fixed set of goroutines draining a bounded channel. Tasks
// are best effort: a full queue drops new tasks and tasks still queued when
// the process dies are lost.
type WorkerPool struct {
	tasks       chan Task
	taskTimeout time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closed      bool
	wg          sync.WaitGroup
}

// NewWorkerPool starts workers goroutines sharing a queue of size slots
func NewWorkerPool(workers, size int, taskTimeout time.Duration) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		tasks:       make(chan Task, size),
		taskTimeout: taskTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

// Enqueue queues task without waiting
func (p *WorkerPool) Enqueue(task Task) bool {
	if task == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		zap.S().Warn("worker pool is shut down, dropping task")
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		zap.S().Warnw("worker pool queue full, dropping task", "capacity", cap(p.tasks))
		return false
	}
}

func (p *WorkerPool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

// run executes one task and keeps a panic inside it from killing the worker
func (p *WorkerPool) run(task Task) {
	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorw("background task panicked", "panic", r)
		}
	}()
	task(ctx)
}

// Shutdown stops accepting tasks and waits for queued ones to finish. When ctx
// ends first, running tasks are cancelled and ctx.Err is returned.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

// ScanDispatcher schedules the scam scan of persisted messages
type ScanDispatcher struct {
	Queue      TaskQueue
	Classifier TextClassifier
	Engine     *Engine
	log        *zap.SugaredLogger
}

// NewScanDispatcher ...
func NewScanDispatcher(queue TaskQueue, classifier TextClassifier, engine *Engine) *ScanDispatcher {
	return &ScanDispatcher{Queue: queue, Classifier: classifier, Engine: engine, log: logging.New("scan")}
}

func (d *ScanDispatcher) logger() *zap.SugaredLogger {
	if d.log == nil {
		return zap.S()
	}
	return d.log
}

// Dispatch schedules exactly one scan for msg. Messages without an id were
// never persisted and are not scheduled. Scans are not retried.
func (d *ScanDispatcher) Dispatch(msg models.Message) bool {
	if msg.ID.IsZero() {
		d.logger().Warnw("refusing to scan unsaved message", "senderId", msg.SenderID)
		return false
	}
	return d.Queue.Enqueue(func(ctx context.Context) {
		d.Scan(ctx, msg)
	})
}

// Scan classifies msg and applies the decision. Errors are logged and never
// returned; nothing upstream is waiting for them.
func (d *ScanDispatcher) Scan(ctx context.Context, msg models.Message) {
	score := d.Classifier.Classify(ctx, msg.Body)
	res, err := d.Engine.ApplyScan(ctx, msg, score)
	if err != nil {
		d.logger().Errorw("failed to apply scam scan",
			"messageId", msg.ID.Hex(),
			"senderId", msg.SenderID,
			"score", score.Score,
			"error", err)
		return
	}
	if res.Action != models.ActionIgnore {
		d.logger().Infow("message flagged by scam scan",
			"messageId", msg.ID.Hex(),
			"senderId", msg.SenderID,
			"score", score.Score,
			"action", res.Action,
			"flagCreated", res.FlagCreated,
			"banned", res.Banned)
	}
}
