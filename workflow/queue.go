package workflow

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ssoriche/prioflow/workflow/emit"
)

// messageHeap implements heap.Interface ordering by Priority, ties broken by
// insertion sequence, adapted from the teacher's workHeap[S] pattern in
// graph/scheduler.go.
type messageHeap []*Message

func (h messageHeap) Len() int { return len(h) }

func (h messageHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h messageHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *messageHeap) Push(x any) {
	*h = append(*h, x.(*Message))
}

func (h *messageHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// inFlight tracks the currently executing message and the cancel func that
// preempts it, mirroring the spec's current_task handle.
type inFlight struct {
	message *Message
	cancel  context.CancelFunc
	done    bool
}

// Consumer is the single-consumer, multi-producer priority queue described
// in spec §4.3: a min-heap of Messages, a registry of named Engines, and a
// preemption policy that cancels an in-flight lower-priority execution when
// a strictly higher-priority Message is published.
//
// All exported methods are safe for concurrent use; publishers and the
// consumer loop coordinate only through the mutex-protected heap and
// current-task handle, matching the single-threaded cooperative model the
// spec describes (Go's goroutines + mutex stand in for that model's
// single-threaded event loop).
type Consumer struct {
	mu      sync.Mutex
	heap    messageHeap
	nextSeq uint64
	engines map[string]*Engine
	current *inFlight

	preemptive   bool
	pollInterval time.Duration
	metrics      *Metrics
	logger       emit.Logger

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewConsumer constructs a Consumer. logger receives lifecycle events
// (completion, failure, preemption, unknown-workflow warnings); a nil
// logger is replaced with emit.NullLogger.
func NewConsumer(logger emit.Logger, opts ...ConsumerOption) *Consumer {
	if logger == nil {
		logger = emit.NullLogger{}
	}
	c := &Consumer{
		engines:      make(map[string]*Engine),
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	heap.Init(&c.heap)
	return c
}

// RegisterWorkflow associates name with engine, overwriting any prior entry.
func (c *Consumer) RegisterWorkflow(name string, engine *Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engines[name] = engine
}

// Publish pushes message onto the heap. If the consumer was built with
// WithPreemptive(true) and an in-flight execution is running whose priority
// is strictly less urgent (numerically larger) than message.Priority, the
// in-flight execution's context is cancelled. Publish never blocks on the
// consumer loop.
func (c *Consumer) Publish(message *Message) {
	c.mu.Lock()
	message.seq = c.nextSeq
	c.nextSeq++
	heap.Push(&c.heap, message)
	depth := c.heap.Len()

	var toCancel context.CancelFunc
	if c.preemptive && c.current != nil && !c.current.done && message.Priority < c.current.message.Priority {
		toCancel = c.current.cancel
	}
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.QueueDepth.Set(float64(depth))
	}
	if toCancel != nil {
		if c.metrics != nil {
			c.metrics.Preemptions.Inc()
		}
		toCancel()
	}
}

// StartConsumer runs the consumer loop until Stop is called. It blocks the
// calling goroutine; callers typically invoke it via `go consumer.StartConsumer(ctx)`.
// The supplied ctx bounds the loop's own lifetime (e.g. process shutdown),
// distinct from the per-message cancellation Publish issues via preemption.
func (c *Consumer) StartConsumer(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	defer close(c.doneCh)

	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		message, ok := c.popNext()
		if !ok {
			select {
			case <-time.After(c.pollInterval):
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
			continue
		}

		c.runOne(ctx, message)
	}
}

// popNext pops the highest-priority message, or reports false if the heap
// is empty.
func (c *Consumer) popNext() (*Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.heap.Len() == 0 {
		return nil, false
	}
	m := heap.Pop(&c.heap).(*Message)
	if c.metrics != nil {
		c.metrics.QueueDepth.Set(float64(c.heap.Len()))
	}
	return m, true
}

// runOne dispatches message to its engine, tracking it as the current task
// so Publish can preempt it, then handles the three possible outcomes per
// spec §4.3 step 2-4.
func (c *Consumer) runOne(ctx context.Context, message *Message) {
	engine, ok := c.lookupEngine(message.WorkflowName)
	if !ok {
		c.logger.Warn("unknown workflow, dropping message", "workflow_name", sanitizeWorkflowName(message.WorkflowName))
		return
	}

	execCtx, cancel := context.WithCancel(ctx)
	task := &inFlight{message: message, cancel: cancel}

	c.mu.Lock()
	c.current = task
	c.mu.Unlock()

	label := message.Priority.String()
	if c.metrics != nil {
		c.metrics.MessagesStarted.WithLabelValues(message.WorkflowName, label).Inc()
	}

	result, err := engine.Execute(execCtx, message.Context, 0)
	cancel()

	c.mu.Lock()
	task.done = true
	if c.current == task {
		c.current = nil
	}
	c.mu.Unlock()

	switch {
	case err == nil:
		message.Context = result
		c.logger.Info("workflow completed", "workflow_name", sanitizeWorkflowName(message.WorkflowName), "workflow_id", message.Context.ID)
		if c.metrics != nil {
			c.metrics.MessagesComplete.WithLabelValues(message.WorkflowName, label).Inc()
		}
	case isCancelled(err):
		// Re-push the original message, priority unchanged; its context now
		// carries the PAUSED checkpoint's resume point via the store, not
		// via any in-memory mutation here.
		c.logger.Info("workflow preempted, re-queued", "workflow_name", sanitizeWorkflowName(message.WorkflowName), "workflow_id", message.Context.ID)
		if c.metrics != nil {
			c.metrics.MessagesRequeued.WithLabelValues(message.WorkflowName).Inc()
		}
		c.Publish(message)
	default:
		c.logger.Error("workflow failed", "workflow_name", sanitizeWorkflowName(message.WorkflowName), "workflow_id", message.Context.ID, "error", err.Error())
		if c.metrics != nil {
			c.metrics.MessagesFailed.WithLabelValues(message.WorkflowName, label).Inc()
		}
	}
}

func (c *Consumer) lookupEngine(name string) (*Engine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.engines[name]
	return e, ok
}

// Stop halts the consumer loop after its current iteration completes; it
// does not cancel an in-flight execution. Stop blocks until the loop has
// actually exited.
func (c *Consumer) Stop() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}
	close(c.stopCh)
	<-c.doneCh
}

// QueueDepth reports the number of messages currently waiting in the heap.
func (c *Consumer) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heap.Len()
}
