package bridge

import (
	"strings"
	"testing"

	"github.com/litua-lang/litua/hook"
)

func TestGlobalGetSet(t *testing.T) {
	g := NewGlobal(nil)
	g.Set("n", 1)
	if got := g.Get("n"); got != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}

func TestGlobalLogsAccess(t *testing.T) {
	var lines []string
	g := NewGlobal(func(s string) { lines = append(lines, s) })
	g.Set("n", 1)
	g.Get("n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %v", len(lines), lines)
	}
}

func TestFormatPositionalSubstitution(t *testing.T) {
	b := &Bridge{}
	got, err := b.Format("hello %1, you are %2", "world", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "hello 'world', you are 42"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatEscapesSingleQuotes(t *testing.T) {
	b := &Bridge{}
	got, err := b.Format("%1", "it's")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "'it\\'s'"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatRendersMappings(t *testing.T) {
	b := &Bridge{}
	got, err := b.Format("%1", map[string]any{"b": "y", "a": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{ [a] = 'x', [b] = 'y' }"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatOverflowFailsPastNineArgs(t *testing.T) {
	b := &Bridge{}
	args := make([]any, 10)
	for i := range args {
		args[i] = i
	}
	if _, err := b.Format("template", args...); err == nil {
		t.Fatal("expected a FormatOverflow error for more than 9 arguments")
	}
}

func TestRegisterUnknownPhaseSuggestsClosestMatch(t *testing.T) {
	b := New(hook.New(), nil, nil)
	err := b.Register("on_setup_", hook.EmptyFilter, func() error { return nil }, "t")
	if err == nil {
		t.Fatal("expected an UnknownPhase error")
	}
	if !strings.Contains(err.Error(), `did you mean "on_setup"?`) {
		t.Fatalf("expected a 'did you mean on_setup' suggestion, got: %v", err)
	}
}
