package pipeline

import (
	"context"
	"errors"
	"testing"
)

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFromSlice_Collect(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]int{1, 2, 3}))
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{1, 2, 3}; !intSliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]int{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestFromFunc_Replayable(t *testing.T) {
	p := FromFunc(func(_ context.Context) Iterator[int] {
		n := 0
		return IteratorFunc[int](func(_ context.Context) (int, bool, error) {
			if n >= 3 {
				return 0, false, nil
			}
			n++
			return n, true, nil
		})
	})
	for i := 0; i < 2; i++ {
		got, err := Collect(context.Background(), p)
		if err != nil {
			t.Fatal(err)
		}
		if !intSliceEqual(got, []int{1, 2, 3}) {
			t.Errorf("pass %d: got %v", i, got)
		}
	}
}

func TestMap(t *testing.T) {
	doubled := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	got, err := Collect(context.Background(), doubled)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{2, 4, 6}) {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestMap_ErrorStopsPulling(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	p := Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
		calls++
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	got, err := Collect(context.Background(), p)
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("expected partial [1], got %v", got)
	}
}

func TestFilter(t *testing.T) {
	evens := Filter(FromSlice([]int{1, 2, 3, 4}), func(n int) bool { return n%2 == 0 })
	got, _ := Collect(context.Background(), evens)
	if !intSliceEqual(got, []int{2, 4}) {
		t.Errorf("got %v, want [2 4]", got)
	}
}

func TestTap(t *testing.T) {
	var seen []int
	p := Tap(FromSlice([]int{5, 6}), func(_ context.Context, n int) error {
		seen = append(seen, n)
		return nil
	})
	got, _ := Collect(context.Background(), p)
	if !intSliceEqual(got, []int{5, 6}) || !intSliceEqual(seen, []int{5, 6}) {
		t.Errorf("got %v, seen %v", got, seen)
	}
}

func TestReduce(t *testing.T) {
	sum := Reduce(FromSlice([]int{1, 2, 3, 4}), 0, func(acc, n int) int { return acc + n })
	got, err := Collect(context.Background(), sum)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{10}) {
		t.Errorf("expected [10], got %v", got)
	}
}

func TestReduce_Empty(t *testing.T) {
	got, _ := Collect(context.Background(), Reduce(FromSlice([]int{}), 7, func(acc, n int) int { return acc + n }))
	if !intSliceEqual(got, []int{7}) {
		t.Errorf("expected initial accumulator [7], got %v", got)
	}
}

func TestDrain_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Drain(FromSlice([]int{1}), func(context.Context, int) error { return nil }).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestForEach(t *testing.T) {
	total := 0
	err := ForEach(context.Background(), FromSlice([]int{1, 2}), func(_ context.Context, n int) error {
		total += n
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("expected 3, got %d", total)
	}
}
