package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"obsmacros/models"
)

const (
	queueSize            = 16
	DefaultInvokeTimeout = 15 * time.Second
	SourceTerminal       = "terminal"
	SourceHTTP           = "http"
)

var (
	ErrNoMacro           = errors.New("no macro bound to key")
	ErrQueueFull         = errors.New("invocation queue full")
	ErrDispatcherStopped = errors.New("dispatcher stopped")
)

// Recorder persists finished invocations.
type Recorder interface {
	Record(ctx context.Context, inv *models.Invocation) error
}

// Broadcaster interface to avoid import cycle with the api package
type Broadcaster interface {
	BroadcastToAll(message interface{})
}

// InvocationEvent is pushed to broadcast subscribers after each run.
type InvocationEvent struct {
	Type       string             `json:"type"`
	Invocation *models.Invocation `json:"invocation"`
}

type job struct {
	ctx    context.Context
	inv    *models.Invocation
	action models.Action
	done   chan error
}

// Dispatcher runs macros one at a time, in the order they were triggered,
// no matter whether they come from the terminal or the HTTP API.
type Dispatcher struct {
	macros      *MacroService
	remote      models.Remote
	recorder    Recorder
	broadcaster Broadcaster
	timeout     time.Duration

	queue chan *job
	stop  chan struct{}
	idle  chan struct{}
}

// NewDispatcher starts the worker. recorder and broadcaster may be nil.
func NewDispatcher(ms *MacroService, remote models.Remote, recorder Recorder, broadcaster Broadcaster) *Dispatcher {
	d := &Dispatcher{
		macros:      ms,
		remote:      remote,
		recorder:    recorder,
		broadcaster: broadcaster,
		timeout:     DefaultInvokeTimeout,
		queue:       make(chan *job, queueSize),
		stop:        make(chan struct{}),
		idle:        make(chan struct{}),
	}

	go d.processQueue()

	return d
}

// Trigger runs the macro bound to b and waits for it to finish. The
// returned invocation is filled in even when the remote call fails.
func (d *Dispatcher) Trigger(ctx context.Context, b models.KeyBinding, source string) (*models.Invocation, error) {
	action, ok := d.macros.Lookup(b)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMacro, b)
	}

	inv := &models.Invocation{
		ID:          uuid.NewString(),
		Binding:     b.String(),
		ActionType:  action.Type().String(),
		Description: action.Describe(),
		Source:      source,
		Status:      models.StatusPending,
	}
	j := &job{ctx: ctx, inv: inv, action: action, done: make(chan error, 1)}

	select {
	case <-d.stop:
		return nil, ErrDispatcherStopped
	default:
	}

	select {
	case d.queue <- j:
	case <-d.stop:
		return nil, ErrDispatcherStopped
	default:
		return nil, ErrQueueFull
	}

	select {
	case err := <-j.done:
		return inv, err
	case <-d.idle:
		return nil, ErrDispatcherStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop ends the worker after the invocation in flight, if any.
func (d *Dispatcher) Stop() {
	select {
	case <-d.stop:
		return
	default:
	}
	close(d.stop)
	<-d.idle
}

// processQueue processes invocations from the queue
func (d *Dispatcher) processQueue() {
	defer close(d.idle)

	for {
		select {
		case <-d.stop:
			return
		case j := <-d.queue:
			j.done <- d.execute(j)
		}
	}
}

func (d *Dispatcher) execute(j *job) error {
	inv := j.inv
	inv.Status = models.StatusExecuting
	inv.StartedAt = time.Now()

	// A caller that gave up while queued has already been told it failed,
	// so the action must not run.
	err := j.ctx.Err()
	if err == nil {
		ctx, cancel := context.WithTimeout(j.ctx, d.timeout)
		err = j.action.Invoke(ctx, d.remote)
		cancel()
	}
	inv.FinishedAt = time.Now()
	if err != nil {
		inv.Status = models.StatusFailed
		inv.Result = err.Error()
		log.Printf("❌ Macro %s (%s) failed: %v", inv.Binding, inv.Description, err)
	} else {
		inv.Status = models.StatusDone
		inv.Result = "success"
		log.Printf("▶️ Macro %s: %s (%s)", inv.Binding, inv.Description, inv.Duration())
	}

	if d.recorder != nil {
		// Recording uses its own context so a cancelled trigger is still logged.
		if rerr := d.recorder.Record(context.Background(), inv); rerr != nil {
			log.Printf("Failed to record invocation: %v", rerr)
		}
	}
	if d.broadcaster != nil {
		d.broadcaster.BroadcastToAll(InvocationEvent{Type: "invocation", Invocation: inv})
	}
	return err
}
