package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Trigger hands a payload to the next stage. Implementations may run the
// stage asynchronously; Invoke only confirms the hand-off.
type Trigger interface {
	Invoke(ctx context.Context, stage string, p Payload) error
}

// Handler runs one stage for one payload.
type Handler func(ctx context.Context, p Payload) error

// Bus is an in-process Trigger: each invocation runs its handler on its
// own goroutine. Stage errors are logged, never propagated to the caller,
// matching the fire-and-forget hand-off between stages.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	log      *slog.Logger
	wg       sync.WaitGroup
}

func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// Register binds a stage name to its handler. Later registrations replace
// earlier ones.
func (b *Bus) Register(stage string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[stage] = h
}

func (b *Bus) Invoke(ctx context.Context, stage string, p Payload) error {
	b.mu.RLock()
	h, ok := b.handlers[stage]
	b.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no handler for stage %q", stage)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := h(context.WithoutCancel(ctx), p); err != nil {
			b.log.Error("stage failed",
				"stage", stage,
				"job_id", p.JobID,
				"role", p.Role,
				"error", err)
			return
		}
		b.log.Info("stage complete", "stage", stage, "job_id", p.JobID, "role", p.Role)
	}()
	return nil
}

// Wait blocks until all in-flight stage invocations finish. Used on
// shutdown and by tests.
func (b *Bus) Wait() {
	b.wg.Wait()
}

// RegisterStages wires the pipeline's stage handlers onto the bus.
func (p *Pipeline) RegisterStages(b *Bus) {
	b.Register(StageOCR, p.RunOCR)
	b.Register(StageEmbed, p.RunEmbed)
	b.Register(StageExtract, p.RunExtract)
}
