package history

import "testing"

func TestPushEvictsOldest(t *testing.T) {
	l := New(3, 0)
	for i := 1; i <= 5; i++ {
		l.Push(i)
	}
	if l.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", l.Len())
	}
	if l.Current() != 5 {
		t.Fatalf("current = %d, want 5", l.Current())
	}
	for _, want := range []int{4, 3} {
		got, ok := l.Undo()
		if !ok || got != want {
			t.Fatalf("undo = %d,%v want %d,true", got, ok, want)
		}
	}
	if _, ok := l.Undo(); ok {
		t.Fatalf("undo past oldest should be a no-op")
	}
	if l.Current() != 3 {
		t.Fatalf("current after failed undo = %d, want 3", l.Current())
	}
}

func TestPushAfterUndoDropsForward(t *testing.T) {
	l := New(6, "a")
	l.Push("b")
	l.Push("c")
	l.Undo()
	l.Push("d")
	if l.Len() != 3 || l.Current() != "d" {
		t.Fatalf("got len=%d current=%q", l.Len(), l.Current())
	}
	got, _ := l.Undo()
	if got != "b" {
		t.Fatalf("undo = %q, want b", got)
	}
}

func TestEmptyLogUndo(t *testing.T) {
	l := New(4, "only")
	if l.CanUndo() {
		t.Fatalf("fresh log cannot undo")
	}
	got, ok := l.Undo()
	if ok || got != "only" {
		t.Fatalf("undo on fresh log = %q,%v", got, ok)
	}
	l.Push("next")
	if l.Steps() != 1 {
		t.Fatalf("steps = %d", l.Steps())
	}
	l.Reset("fresh")
	if l.Len() != 1 || l.Current() != "fresh" {
		t.Fatalf("reset failed")
	}
}

func TestCapacityFloor(t *testing.T) {
	l := New(0, 1)
	l.Push(2)
	if l.Len() != 1 || l.Current() != 2 || l.CanUndo() {
		t.Fatalf("capacity 0 should behave as 1")
	}
}
