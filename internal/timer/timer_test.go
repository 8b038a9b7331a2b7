package timer

import (
	"testing"

	"pcecore/internal/irq"
)

func TestDisabledTimerNeverFires(t *testing.T) {
	tm := New()
	tm.WriteReload(9)
	c := irq.New(nil)
	tm.Advance(10_000_000, c)
	if c.AnyPending() {
		t.Fatal("disabled timer must not assert TIRQ")
	}
}

func TestEnableReloadsCounterAndPrescaler(t *testing.T) {
	tm := New()
	tm.WriteReload(9)
	tm.WriteControl(1)
	if tm.Counter != 9 || tm.Prescaler != prescalerPeriod {
		t.Fatalf("enable should reload counter=9 prescaler=%d, got counter=%d prescaler=%d", prescalerPeriod, tm.Counter, tm.Prescaler)
	}
}

// TestCadence matches the documented scenario: R=9 (reload+1=10 ticks per
// underflow cycle), 1,000,000 master cycles, expecting a TIRQ count within
// +/-1 of 1,000,000/(1024*10).
func TestCadence(t *testing.T) {
	tm := New()
	tm.WriteReload(9)
	tm.WriteControl(1)
	c := irq.New(nil)

	const masterCycles = 1_000_000
	var fired int
	var remaining uint64 = masterCycles
	const step = 997 // uneven step size to exercise cross-call prescaler carry
	for remaining > 0 {
		n := uint64(step)
		if n > remaining {
			n = remaining
		}
		before := c.ReadRequest()
		tm.Advance(n, c)
		if c.ReadRequest() != before {
			fired++
			c.WriteRequestClear(0x07)
		}
		remaining -= n
	}

	want := masterCycles / (1024 * 10)
	if diff := fired - want; diff < -1 || diff > 1 {
		t.Fatalf("fired=%d, want within 1 of %d", fired, want)
	}
}

func TestReloadReadback(t *testing.T) {
	tm := New()
	tm.WriteReload(0x7F)
	if tm.ReadReload() != 0x7F {
		t.Fatalf("ReadReload = %#x, want 0x7F", tm.ReadReload())
	}
	tm.WriteReload(0xFF) // top bit must be masked off
	if tm.ReadReload() != 0x7F {
		t.Fatalf("ReadReload = %#x, want 0x7F (top bit masked)", tm.ReadReload())
	}
}
