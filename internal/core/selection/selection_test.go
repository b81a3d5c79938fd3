package selection

import (
	"reflect"
	"testing"

	perr "tiba/internal/platform/errors"
)

func TestNew_SelectsEverything(t *testing.T) {
	l := New("a", "b", "c", "b")
	if got, want := l.Items(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Items() = %v, want %v", got, want)
	}
	if l.Len() != 3 || !l.Contains("c") {
		t.Fatalf("expected every id selected, got %v", l.Items())
	}
}

func TestToggle_IsSelfInverse(t *testing.T) {
	ids := []string{"m1", "m2", "f1"}
	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			l := New(ids...)
			before := l.Items()

			on, err := l.Toggle(id)
			if err != nil {
				t.Fatalf("toggle: %v", err)
			}
			if on || l.Contains(id) {
				t.Fatalf("first toggle should deselect %q", id)
			}
			on, err = l.Toggle(id)
			if err != nil {
				t.Fatalf("toggle: %v", err)
			}
			if !on {
				t.Fatalf("second toggle should reselect %q", id)
			}
			if got := l.Items(); !reflect.DeepEqual(got, before) {
				t.Fatalf("after double toggle got %v, want %v", got, before)
			}
		})
	}
}

func TestToggle_KeepsUniverseOrder(t *testing.T) {
	l := New("a", "b", "c")
	_, _ = l.Toggle("a")
	_, _ = l.Toggle("a")
	if got, want := l.Items(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Items() = %v, want %v", got, want)
	}
}

func TestToggle_RejectsUnknown(t *testing.T) {
	l := New("a")
	_, err := l.Toggle("zz")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("list changed on rejected toggle")
	}
}

func TestResetToAll_DropsStaleIDs(t *testing.T) {
	l := New("old1", "old2")
	_, _ = l.Toggle("old1")

	l.ResetToAll([]string{"new1", "new2"})
	if l.Contains("old2") || l.Known("old1") {
		t.Fatalf("stale ids survived reset")
	}
	if got := l.Items(); !reflect.DeepEqual(got, []string{"new1", "new2"}) {
		t.Fatalf("reset should select the whole subset, got %v", l.Items())
	}
}

func TestOnly(t *testing.T) {
	l := New("a", "b", "c")
	if err := l.Only("b"); err != nil {
		t.Fatalf("Only: %v", err)
	}
	if got := l.Items(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("Items() = %v", got)
	}
	if err := l.Only("x"); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestNilList(t *testing.T) {
	var l *List
	if l.Len() != 0 || l.Contains("a") || l.Known("a") {
		t.Fatalf("nil list should be empty")
	}
	if got := l.Items(); len(got) != 0 {
		t.Fatalf("Items() on nil = %v", got)
	}
}
