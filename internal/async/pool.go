package async

import (
	"context"
	"sync"

	"chatwave/pkg/logger"

	"go.uber.org/zap"
)

// Pool is a bounded worker pool. Submitted tasks carry the submitting
// request's ambient identity and correlation id across the goroutine
// boundary. When the queue is full the task runs on the caller's own
// goroutine, so saturation slows producers instead of dropping work.
type Pool struct {
	name   string
	tasks  chan func()
	wg     sync.WaitGroup
	log    *logger.Logger
	mu     sync.Mutex
	closed bool
}

func NewPool(name string, workers, queueCapacity int, log *logger.Logger) *Pool {
	p := &Pool{
		name:  name,
		tasks: make(chan func(), queueCapacity),
		log:   log,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit schedules task on the pool. The ambient state of ctx is captured
// now and reinstalled on a fresh task context; it is released when the task
// returns, including on panic.
func (p *Pool) Submit(ctx context.Context, task func(ctx context.Context)) {
	ambient := Capture(ctx)
	wrapped := func() {
		taskCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		taskCtx = ambient.Install(taskCtx)
		defer func() {
			if r := recover(); r != nil {
				p.log.WithContext(taskCtx).Error("task panicked",
					zap.String("pool", p.name),
					zap.Any("panic", r),
				)
			}
		}()
		task(taskCtx)
	}

	p.mu.Lock()
	if !p.closed {
		select {
		case p.tasks <- wrapped:
			p.mu.Unlock()
			return
		default:
			// Queue full: fall through and run on the caller's goroutine.
		}
	}
	p.mu.Unlock()

	wrapped()
}

// Close stops accepting work and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.tasks)
	p.wg.Wait()
}
