package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ssoriche/prioflow/workflow"
	"github.com/ssoriche/prioflow/workflow/store"
)

// recordingLogger captures log lines for assertions instead of printing
// them, the test-only counterpart to emit.TextLogger.
type recordingLogger struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (r *recordingLogger) Info(msg string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, msg)
}
func (r *recordingLogger) Warn(msg string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}
func (r *recordingLogger) Error(string, ...any) {}

func (r *recordingLogger) warnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warns)
}

func newTestEngine(name string, memStore *store.MemoryStore, completions *[]string, mu *sync.Mutex) *workflow.Engine {
	engine := workflow.NewEngine(
		workflow.WithCheckpointStore(memStore),
		workflow.WithPacingInterval(5*time.Millisecond),
	)
	engine.Configure(name, []workflow.NamedStep{
		workflow.Step("record", func(_ context.Context, c *workflow.Context) (*workflow.Context, error) {
			mu.Lock()
			*completions = append(*completions, name)
			mu.Unlock()
			return c, nil
		}),
	})
	return engine
}

func TestConsumerPriorityFIFOWithoutPreemption(t *testing.T) {
	memStore := store.NewMemoryStore()
	logger := &recordingLogger{}

	var mu sync.Mutex
	var order []string

	consumer := workflow.NewConsumer(logger, workflow.WithPollInterval(time.Millisecond))
	consumer.RegisterWorkflow("low-a", newTestEngine("A", memStore, &order, &mu))
	consumer.RegisterWorkflow("low-b", newTestEngine("B", memStore, &order, &mu))
	consumer.RegisterWorkflow("high-c", newTestEngine("C", memStore, &order, &mu))
	consumer.RegisterWorkflow("medium-d", newTestEngine("D", memStore, &order, &mu))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer.Publish(&workflow.Message{Priority: workflow.PriorityLow, WorkflowName: "low-a", Context: workflow.NewContext()})
	consumer.Publish(&workflow.Message{Priority: workflow.PriorityLow, WorkflowName: "low-b", Context: workflow.NewContext()})
	consumer.Publish(&workflow.Message{Priority: workflow.PriorityHigh, WorkflowName: "high-c", Context: workflow.NewContext()})
	consumer.Publish(&workflow.Message{Priority: workflow.PriorityMedium, WorkflowName: "medium-d", Context: workflow.NewContext()})

	go consumer.StartConsumer(ctx)
	time.Sleep(100 * time.Millisecond)
	consumer.Stop()

	mu.Lock()
	defer mu.Unlock()
	want := []string{"C", "D", "A", "B"}
	if len(order) != len(want) {
		t.Fatalf("expected completion order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected completion order %v, got %v", want, order)
		}
	}
}

func TestConsumerPreemptionTriggerCondition(t *testing.T) {
	memStore := store.NewMemoryStore()
	logger := &recordingLogger{}

	lowEngine := workflow.NewEngine(
		workflow.WithCheckpointStore(memStore),
		workflow.WithPacingInterval(30*time.Millisecond),
	)
	lowEngine.Configure("low", []workflow.NamedStep{
		workflow.Step("l1", func(_ context.Context, c *workflow.Context) (*workflow.Context, error) { return c, nil }),
		workflow.Step("l2", func(_ context.Context, c *workflow.Context) (*workflow.Context, error) { return c, nil }),
	})

	var mu sync.Mutex
	var completed []string
	highEngine := newTestEngine("high", memStore, &completed, &mu)

	consumer := workflow.NewConsumer(logger, workflow.WithPreemptive(true), workflow.WithPollInterval(time.Millisecond))
	consumer.RegisterWorkflow("low", lowEngine)
	consumer.RegisterWorkflow("high", highEngine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lowContext := workflow.NewContext()
	consumer.Publish(&workflow.Message{Priority: workflow.PriorityLow, WorkflowName: "low", Context: lowContext})

	go consumer.StartConsumer(ctx)
	time.Sleep(15 * time.Millisecond) // mid-flight on step 0's yield

	consumer.Publish(&workflow.Message{Priority: workflow.PriorityHigh, WorkflowName: "high", Context: workflow.NewContext()})

	time.Sleep(120 * time.Millisecond)
	consumer.Stop()

	cp, err := memStore.Load(context.Background(), lowContext.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cp != nil {
		t.Fatalf("expected low workflow to have resumed to completion, leaving no checkpoint, got %+v", cp)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(completed) != 1 || completed[0] != "high" {
		t.Fatalf("expected high-priority workflow to complete exactly once, got %v", completed)
	}
}

func TestConsumerUnknownWorkflowLogsAndContinues(t *testing.T) {
	memStore := store.NewMemoryStore()
	logger := &recordingLogger{}

	var mu sync.Mutex
	var completed []string

	consumer := workflow.NewConsumer(logger, workflow.WithPollInterval(time.Millisecond))
	consumer.RegisterWorkflow("known", newTestEngine("known", memStore, &completed, &mu))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer.Publish(&workflow.Message{Priority: workflow.PriorityMedium, WorkflowName: "ghost", Context: workflow.NewContext()})
	consumer.Publish(&workflow.Message{Priority: workflow.PriorityMedium, WorkflowName: "known", Context: workflow.NewContext()})

	go consumer.StartConsumer(ctx)
	time.Sleep(50 * time.Millisecond)
	consumer.Stop()

	if logger.warnCount() != 1 {
		t.Fatalf("expected exactly one warning for the unknown workflow, got %d", logger.warnCount())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(completed) != 1 || completed[0] != "known" {
		t.Fatalf("expected the known workflow to still process normally, got %v", completed)
	}
}

func TestConsumerBackToBackHighsCancelLowOnce(t *testing.T) {
	memStore := store.NewMemoryStore()
	logger := &recordingLogger{}

	lowEngine := workflow.NewEngine(
		workflow.WithCheckpointStore(memStore),
		workflow.WithPacingInterval(40*time.Millisecond),
	)
	lowEngine.Configure("low", []workflow.NamedStep{
		workflow.Step("l1", func(_ context.Context, c *workflow.Context) (*workflow.Context, error) { return c, nil }),
		workflow.Step("l2", func(_ context.Context, c *workflow.Context) (*workflow.Context, error) { return c, nil }),
	})

	var mu sync.Mutex
	var completed []string
	highX := newTestEngine("X", memStore, &completed, &mu)
	highY := newTestEngine("Y", memStore, &completed, &mu)

	consumer := workflow.NewConsumer(logger, workflow.WithPreemptive(true), workflow.WithPollInterval(time.Millisecond))
	consumer.RegisterWorkflow("low", lowEngine)
	consumer.RegisterWorkflow("x", highX)
	consumer.RegisterWorkflow("y", highY)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lowContext := workflow.NewContext()
	consumer.Publish(&workflow.Message{Priority: workflow.PriorityLow, WorkflowName: "low", Context: lowContext})

	go consumer.StartConsumer(ctx)
	time.Sleep(10 * time.Millisecond)

	consumer.Publish(&workflow.Message{Priority: workflow.PriorityHigh, WorkflowName: "x", Context: workflow.NewContext()})
	consumer.Publish(&workflow.Message{Priority: workflow.PriorityHigh, WorkflowName: "y", Context: workflow.NewContext()})

	time.Sleep(150 * time.Millisecond)
	consumer.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(completed) != 2 || completed[0] != "X" || completed[1] != "Y" {
		t.Fatalf("expected X then Y to complete in FIFO order, got %v", completed)
	}

	cp, err := memStore.Load(context.Background(), lowContext.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cp != nil {
		t.Fatalf("expected low workflow to eventually resume to completion, got %+v", cp)
	}
}
