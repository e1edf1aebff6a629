package pipeline

import (
	"context"
	"errors"
	"testing"
)

// fakeCommand is a minimal stage command for plan/execution tests.
type fakeCommand struct {
	BaseCommand
	run func(ctx context.Context, rs *RunState) StageExecution
}

func newFakeCommand(name StageName, deps []StageName, run func(ctx context.Context, rs *RunState) StageExecution) *fakeCommand {
	if run == nil {
		run = func(context.Context, *RunState) StageExecution { return ExecutionSuccess() }
	}
	return &fakeCommand{
		BaseCommand: NewBaseCommand(CommandMetadata{Name: name, Dependencies: deps}),
		run:         run,
	}
}

func (c *fakeCommand) Execute(ctx context.Context, rs *RunState) StageExecution {
	return c.run(ctx, rs)
}

func registryOf(t *testing.T, cmds ...StageCommand) *Registry {
	t.Helper()
	r := NewRegistry()
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			t.Fatalf("register %s: %v", cmd.Name(), err)
		}
	}
	return r
}

func TestPlanRespectsDependencies(t *testing.T) {
	r := registryOf(t,
		newFakeCommand("c", []StageName{"b"}, nil),
		newFakeCommand("b", []StageName{"a"}, nil),
		newFakeCommand("a", nil, nil),
	)
	p := New(r)

	plan, err := p.BuildExecutionPlan([]StageName{"c"})
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}

	// Transitive dependencies are pulled in automatically.
	want := []StageName{"a", "b", "c"}
	if len(plan.Order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, plan.Order)
	}
	for i, s := range want {
		if plan.Order[i] != s {
			t.Fatalf("expected order %v, got %v", want, plan.Order)
		}
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	r := registryOf(t,
		newFakeCommand("z", nil, nil),
		newFakeCommand("m", nil, nil),
		newFakeCommand("a", nil, nil),
	)
	p := New(r)

	first, err := p.BuildExecutionPlan([]StageName{"z", "m", "a"})
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := p.BuildExecutionPlan([]StageName{"z", "m", "a"})
		if err != nil {
			t.Fatalf("build plan: %v", err)
		}
		for j := range first.Order {
			if first.Order[j] != again.Order[j] {
				t.Fatalf("plan order not deterministic: %v vs %v", first.Order, again.Order)
			}
		}
	}
}

func TestPlanRejectsCycles(t *testing.T) {
	r := registryOf(t,
		newFakeCommand("a", []StageName{"b"}, nil),
		newFakeCommand("b", []StageName{"a"}, nil),
	)
	p := New(r)

	if _, err := p.BuildExecutionPlan([]StageName{"a"}); err == nil {
		t.Fatal("expected cycle detection error")
	}
}

func TestPlanRejectsUnknownStage(t *testing.T) {
	p := New(registryOf(t, newFakeCommand("a", nil, nil)))
	if _, err := p.BuildExecutionPlan([]StageName{"nope"}); err == nil {
		t.Fatal("expected unknown stage error")
	}
}

func TestExecuteStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var ran []StageName

	record := func(name StageName, fail bool) *fakeCommand {
		var deps []StageName
		if name == "second" {
			deps = []StageName{"first"}
		} else if name == "third" {
			deps = []StageName{"second"}
		}
		return newFakeCommand(name, deps, func(context.Context, *RunState) StageExecution {
			ran = append(ran, name)
			if fail {
				return ExecutionFailure(boom)
			}
			return ExecutionSuccess()
		})
	}

	r := registryOf(t, record("first", false), record("second", true), record("third", false))
	p := New(r)

	_, err := p.Execute(context.Background(), &RunState{RunID: "t"}, "third")
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(ran) != 2 || ran[0] != "first" || ran[1] != "second" {
		t.Fatalf("expected [first second], got %v", ran)
	}
}

func TestExecuteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(registryOf(t, newFakeCommand("a", nil, nil)))
	result, err := p.Execute(ctx, &RunState{RunID: "t"}, "a")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !result.Canceled {
		t.Error("result should be marked canceled")
	}
	if result.IsSuccess() {
		t.Error("canceled result should not be a success")
	}
}

// memorySink records stage events in memory.
type memorySink struct {
	events []string
}

func (m *memorySink) AppendStageEvent(_ context.Context, _, stage, eventType, _ string) error {
	m.events = append(m.events, stage+":"+eventType)
	return nil
}

func TestExecuteEmitsEvents(t *testing.T) {
	sink := &memorySink{}
	p := New(registryOf(t, newFakeCommand("a", nil, nil)), WithEventSink(sink))

	if _, err := p.Execute(context.Background(), &RunState{RunID: "t"}, "a"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := []string{"a:stage.started", "a:stage.completed"}
	if len(sink.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, sink.events)
	}
	for i := range want {
		if sink.events[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, sink.events)
		}
	}
}
