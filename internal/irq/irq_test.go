package irq

import "testing"

func TestSetAndAnyPending(t *testing.T) {
	c := New(nil)
	c.Reset()
	if c.AnyPending() {
		t.Fatal("fresh controller should have nothing pending")
	}
	c.Set(TIRQ)
	if !c.AnyPending() {
		t.Fatal("expected TIRQ pending")
	}
}

func TestPriorityOrder(t *testing.T) {
	c := New(nil)
	c.Set(TIRQ)
	c.Set(IRQ1)
	c.Set(IRQ2)
	src, ok := c.Next(false)
	if !ok || src != IRQ2 {
		t.Fatalf("expected IRQ2 highest priority, got %v ok=%v", src, ok)
	}
}

func TestMaskSuppressesSource(t *testing.T) {
	c := New(nil)
	c.WriteDisable(TIRQ.mask())
	c.Set(TIRQ)
	if c.AnyPending() {
		t.Fatal("masked source should not be pending")
	}
	if _, ok := c.Next(false); ok {
		t.Fatal("masked source should not be selected")
	}
}

func TestIFlagBlocksNextButNotAnyPending(t *testing.T) {
	c := New(nil)
	c.Set(TIRQ)
	if !c.AnyPending() {
		t.Fatal("AnyPending must ignore the I flag (WAI wakes regardless)")
	}
	if _, ok := c.Next(true); ok {
		t.Fatal("Next must respect the I flag")
	}
}

func TestRequestClearIsWriteOneToClear(t *testing.T) {
	c := New(nil)
	c.Set(TIRQ)
	c.Set(IRQ1)
	c.WriteRequestClear(TIRQ.mask())
	if c.ReadRequest()&TIRQ.mask() != 0 {
		t.Fatal("TIRQ request bit should be cleared")
	}
	if c.ReadRequest()&IRQ1.mask() == 0 {
		t.Fatal("IRQ1 request bit should remain set")
	}
}

func TestClearIRQ1(t *testing.T) {
	c := New(nil)
	c.Set(IRQ1)
	c.ClearIRQ1()
	if c.ReadRequest()&IRQ1.mask() != 0 {
		t.Fatal("ClearIRQ1 should clear the IRQ1 request bit")
	}
}

func TestVectors(t *testing.T) {
	cases := map[Source]uint16{IRQ2: 0xFFF6, IRQ1: 0xFFF8, TIRQ: 0xFFFA}
	for src, want := range cases {
		if got := src.Vector(); got != want {
			t.Errorf("%v.Vector() = %#x, want %#x", src, got, want)
		}
	}
}
