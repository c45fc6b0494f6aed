package controls

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var got atomic.Int64
	for i := 1; i <= 5; i++ {
		v := int64(i)
		d.Call(func() { got.Store(v) })
	}

	time.Sleep(150 * time.Millisecond)
	if got.Load() != 5 {
		t.Errorf("debounced value = %d, want last scheduled 5", got.Load())
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)

	var fired atomic.Bool
	d.Call(func() { fired.Store(true) })
	d.Flush()

	if !fired.Load() {
		t.Error("Flush() did not run the pending call")
	}

	// A second flush must be a no-op.
	fired.Store(false)
	d.Flush()
	if fired.Load() {
		t.Error("second Flush() re-ran the call")
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var fired atomic.Bool
	d.Call(func() { fired.Store(true) })
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Error("cancelled call still fired")
	}
}
