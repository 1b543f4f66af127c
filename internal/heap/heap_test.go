package heap

import "testing"

func ascending(a, b int) bool { return a < b }

func TestHeapPushPopOrdering(t *testing.T) {
	h := New[int, string](ascending)
	in := map[int]string{5: "e", 1: "a", 4: "d", 2: "b", 3: "c"}
	for k, v := range in {
		h.Push(k, v)
	}

	for want := 1; want <= 5; want++ {
		key, value, ok := h.TryPop()
		if !ok {
			t.Fatalf("TryPop() returned false before draining all elements")
		}
		if key != want {
			t.Fatalf("TryPop() key = %d, want %d", key, want)
		}
		if value != in[want] {
			t.Fatalf("TryPop() value = %q, want %q", value, in[want])
		}
	}
	if _, _, ok := h.TryPop(); ok {
		t.Error("TryPop() on empty heap returned true")
	}
}

func TestHeapTryPopEmpty(t *testing.T) {
	h := New[int, int](ascending)
	if _, _, ok := h.TryPop(); ok {
		t.Error("TryPop() on empty heap returned true")
	}
}

func TestHeapSingleton(t *testing.T) {
	h := New[int, int](ascending)
	h.Push(42, 100)
	if h.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", h.Size())
	}
	key, value, ok := h.TryPop()
	if !ok || key != 42 || value != 100 {
		t.Fatalf("TryPop() = (%d, %d, %v), want (42, 100, true)", key, value, ok)
	}
	if h.Size() != 0 {
		t.Errorf("Size() after draining singleton = %d, want 0", h.Size())
	}
}

func TestHeapTryPeekTopKey(t *testing.T) {
	h := New[int, int](ascending)
	if _, ok := h.TryPeekTopKey(); ok {
		t.Error("TryPeekTopKey() on empty heap returned true")
	}
	h.Push(10, 0)
	h.Push(3, 0)
	h.Push(7, 0)
	key, ok := h.TryPeekTopKey()
	if !ok || key != 3 {
		t.Fatalf("TryPeekTopKey() = (%d, %v), want (3, true)", key, ok)
	}
	if h.Size() != 3 {
		t.Error("TryPeekTopKey() must not remove the element")
	}
}

func TestHeapCompareTryPopMismatch(t *testing.T) {
	h := New[int, string](ascending)
	h.Push(5, "five")

	var out string
	actual, ok := h.CompareTryPop(6, &out)
	if ok {
		t.Fatal("CompareTryPop() with mismatched key reported success")
	}
	if actual != 5 {
		t.Errorf("CompareTryPop() reported actual = %d, want 5", actual)
	}
	if h.Size() != 1 {
		t.Error("CompareTryPop() mismatch must not remove the element")
	}
}

func TestHeapCompareTryPopSuccess(t *testing.T) {
	h := New[int, string](ascending)
	h.Push(5, "five")

	var out string
	actual, ok := h.CompareTryPop(5, &out)
	if !ok || actual != 5 || out != "five" {
		t.Fatalf("CompareTryPop() = (%d, %q, %v), want (5, \"five\", true)", actual, out, ok)
	}
	if h.Size() != 0 {
		t.Error("CompareTryPop() success must remove the element")
	}
}

func TestHeapCompareTryPopOnEmpty(t *testing.T) {
	h := New[int, string](ascending)
	var out string
	actual, ok := h.CompareTryPop(5, &out)
	if ok {
		t.Fatal("CompareTryPop() on empty heap reported success")
	}
	if actual != 5 {
		t.Errorf("CompareTryPop() on empty heap must leave expected key unchanged, got %d", actual)
	}
}

func TestHeapClear(t *testing.T) {
	h := New[int, int](ascending)
	for i := 0; i < 20; i++ {
		h.Push(i, i)
	}
	h.Clear()
	if h.Size() != 0 {
		t.Fatalf("Size() after Clear() = %d, want 0", h.Size())
	}
	h.Push(1, 1)
	key, _, ok := h.TryPop()
	if !ok || key != 1 {
		t.Error("heap must be reusable after Clear()")
	}
}

func TestHeapWithCapacityAndShrinkToFit(t *testing.T) {
	h := NewWithCapacity[int, int](ascending, 100)
	for i := 0; i < 10; i++ {
		h.Push(i, i)
	}
	h.ShrinkToFit()
	for want := 0; want < 10; want++ {
		key, _, ok := h.TryPop()
		if !ok || key != want {
			t.Fatalf("TryPop() after ShrinkToFit() = (%d, %v), want (%d, true)", key, ok, want)
		}
	}
}

func TestHeapDescendingComparator(t *testing.T) {
	descending := func(a, b int) bool { return a > b }
	h := New[int, int](descending)
	for _, k := range []int{1, 5, 3, 2, 4} {
		h.Push(k, 0)
	}
	for want := 5; want >= 1; want-- {
		key, _, ok := h.TryPop()
		if !ok || key != want {
			t.Fatalf("TryPop() = (%d, %v), want (%d, true)", key, ok, want)
		}
	}
}
