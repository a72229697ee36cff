package core_test

import (
	"testing"

	"todo-gateway/core"
)

func TestSelectionToggle(t *testing.T) {
	t.Parallel()

	sel := core.NewSelection()

	sel.Toggle("a")
	if !sel.IsSelected("a") {
		t.Fatalf("expected a to be selected")
	}

	sel.Toggle("a")
	if sel.IsSelected("a") {
		t.Fatalf("expected a to be deselected after second toggle")
	}
	if sel.Count() != 0 {
		t.Fatalf("expected empty selection, got %d", sel.Count())
	}
}

func TestSelectionSelectAll_ReplacesWholesale(t *testing.T) {
	t.Parallel()

	sel := core.NewSelection()
	sel.Toggle("old")

	sel.SelectAll([]string{"b", "a", "c"})

	if sel.IsSelected("old") {
		t.Fatalf("expected previous selection to be replaced")
	}
	if sel.Count() != 3 {
		t.Fatalf("expected 3 selected, got %d", sel.Count())
	}

	got := sel.ToArray()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectionClear(t *testing.T) {
	t.Parallel()

	sel := core.NewSelection()
	sel.SelectAll([]string{"a", "b"})
	sel.Clear()

	if sel.Count() != 0 {
		t.Fatalf("expected cleared selection, got %d", sel.Count())
	}
	if len(sel.ToArray()) != 0 {
		t.Fatalf("expected empty array after clear")
	}
}
