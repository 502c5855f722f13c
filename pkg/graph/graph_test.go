package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type testState struct {
	log  []string
	mode string
}

func testReduce(acc, update testState) testState {
	out := acc
	out.log = append(out.log, update.log...)
	if update.mode != "" {
		out.mode = update.mode
	}
	return out
}

func appendNode(entry string) NodeFunc[testState] {
	return func(ctx context.Context, s testState) (testState, error) {
		return testState{log: []string{entry}}, nil
	}
}

func buildLinear(t *testing.T) *Graph[testState] {
	t.Helper()
	g := New[testState]("linear", testReduce)
	for _, n := range []string{"a", "b", "c"} {
		if err := g.AddNode(n, appendNode(n)); err != nil {
			t.Fatalf("AddNode(%s): %v", n, err)
		}
	}
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("b", "c"); err != nil {
		t.Fatal(err)
	}
	if err := g.AddEdge("c", End); err != nil {
		t.Fatal(err)
	}
	if err := g.SetEntryPoint("a"); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestExecute_Linear(t *testing.T) {
	g := buildLinear(t)

	final, err := g.Execute(context.Background(), testState{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := strings.Join(final.log, ","); got != "a,b,c" {
		t.Errorf("execution order = %s, want a,b,c", got)
	}
}

func TestStream_EmitsPerNodeInOrder(t *testing.T) {
	g := buildLinear(t)

	var events []string
	_, err := g.Stream(context.Background(), testState{}, func(ev Event[testState]) {
		events = append(events, ev.Node+":"+strings.Join(ev.Update.log, ""))
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	want := []string{"a:a", "b:b", "c:c"}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestExecute_ConditionalBranch(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want string
	}{
		{name: "takes_long_path", mode: "long", want: "start,work,finish"},
		{name: "skips_to_finish", mode: "short", want: "start,finish"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New[testState]("branching", testReduce)
			_ = g.AddNode("start", func(ctx context.Context, s testState) (testState, error) {
				return testState{log: []string{"start"}, mode: tt.mode}, nil
			})
			_ = g.AddNode("work", appendNode("work"))
			_ = g.AddNode("finish", appendNode("finish"))
			_ = g.AddConditionalEdge("start", func(s testState) string {
				if s.mode == "long" {
					return "work"
				}
				return "finish"
			})
			_ = g.AddEdge("work", "finish")
			_ = g.AddEdge("finish", End)
			_ = g.SetEntryPoint("start")

			final, err := g.Execute(context.Background(), testState{})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if got := strings.Join(final.log, ","); got != tt.want {
				t.Errorf("path = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExecute_NodeErrorStopsRun(t *testing.T) {
	bang := errors.New("bang")

	g := New[testState]("failing", testReduce)
	_ = g.AddNode("ok", appendNode("ok"))
	_ = g.AddNode("boom", func(ctx context.Context, s testState) (testState, error) {
		return testState{}, bang
	})
	_ = g.AddNode("never", appendNode("never"))
	_ = g.AddEdge("ok", "boom")
	_ = g.AddEdge("boom", "never")
	_ = g.AddEdge("never", End)
	_ = g.SetEntryPoint("ok")

	var events []string
	_, err := g.Stream(context.Background(), testState{}, func(ev Event[testState]) {
		events = append(events, ev.Node)
	})
	if !errors.Is(err, bang) {
		t.Fatalf("expected wrapped node error, got %v", err)
	}
	if len(events) != 1 || events[0] != "ok" {
		t.Errorf("events = %v, want [ok]", events)
	}
}

func TestExecute_ContextCancelled(t *testing.T) {
	g := buildLinear(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Execute(ctx, testState{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGraph_WiringErrors(t *testing.T) {
	g := New[testState]("wiring", testReduce)
	_ = g.AddNode("a", appendNode("a"))

	if err := g.AddNode("a", appendNode("a")); err == nil {
		t.Error("duplicate node accepted")
	}
	if err := g.AddEdge("a", "missing"); err == nil {
		t.Error("edge to unknown node accepted")
	}
	if err := g.SetEntryPoint("missing"); err == nil {
		t.Error("unknown entry point accepted")
	}
	if _, err := g.Execute(context.Background(), testState{}); err == nil {
		t.Error("execute without entry point accepted")
	}
}

func TestExecute_MaxStepsGuardsCycles(t *testing.T) {
	g := New[testState]("cyclic", testReduce)
	_ = g.AddNode("a", appendNode("a"))
	_ = g.AddNode("b", appendNode("b"))
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "a")
	_ = g.SetEntryPoint("a")

	_, err := g.Execute(context.Background(), testState{})
	if err == nil || !strings.Contains(err.Error(), "max steps") {
		t.Errorf("expected max steps error, got %v", err)
	}
}
