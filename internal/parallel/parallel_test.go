package parallel

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_EveryIndexOnce(t *testing.T) {
	cfg := DefaultConfig()

	n := 257 // Not a multiple of any chunk size.
	hits := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	}, cfg)

	for i, h := range hits {
		if h != 1 {
			t.Errorf("index %d visited %d times", i, h)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Sequential()

	// Sequential execution preserves order.
	var order []int
	For(5, func(i int) {
		order = append(order, i)
	}, cfg)

	for i, v := range order {
		if v != i {
			t.Fatalf("sequential run out of order: %v", order)
		}
	}
}

func TestForErr(t *testing.T) {
	cfg := DefaultConfig()

	failAt3 := errors.New("boom 3")
	failAt7 := errors.New("boom 7")
	err := ForErr(10, func(i int) error {
		switch i {
		case 3:
			return failAt3
		case 7:
			return failAt7
		}
		return nil
	}, cfg)

	if !errors.Is(err, failAt3) {
		t.Errorf("want the lowest-indexed error, got %v", err)
	}

	if err := ForErr(10, func(int) error { return nil }, cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
