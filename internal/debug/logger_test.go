package debug

import (
	"testing"
	"time"
)

func waitForEntries(l *Logger, n int) []LogEntry {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if entries := l.GetEntries(); len(entries) >= n {
			return entries
		}
		time.Sleep(time.Millisecond)
	}
	return l.GetEntries()
}

func TestLoggingIsOptInPerComponent(t *testing.T) {
	l := NewLogger(100)
	defer l.Shutdown()

	l.LogCPU(LogLevelError, "should be dropped, CPU disabled by default", nil)
	time.Sleep(10 * time.Millisecond)
	if len(l.GetEntries()) != 0 {
		t.Fatal("components must be disabled by default")
	}

	l.SetComponentEnabled(ComponentCPU, true)
	l.LogCPU(LogLevelError, "now it should land", nil)
	entries := waitForEntries(l, 1)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Component != ComponentCPU {
		t.Errorf("entry component = %v, want ComponentCPU", entries[0].Component)
	}
}

func TestMinLevelFiltersLowerSeverity(t *testing.T) {
	l := NewLogger(100)
	defer l.Shutdown()
	l.SetComponentEnabled(ComponentVDC, true)
	l.SetMinLevel(LogLevelWarning)

	l.LogVDC(LogLevelDebug, "filtered out", nil)
	time.Sleep(10 * time.Millisecond)
	if len(l.GetEntries()) != 0 {
		t.Fatal("entry below min level should be filtered")
	}

	l.LogVDC(LogLevelError, "passes threshold", nil)
	entries := waitForEntries(l, 1)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestCircularBufferWrapsAtCapacity(t *testing.T) {
	l := NewLogger(100) // minimum buffer size
	defer l.Shutdown()
	l.SetComponentEnabled(ComponentSystem, true)

	for i := 0; i < 150; i++ {
		l.LogSystem(LogLevelInfo, "filler", nil)
	}
	entries := waitForEntries(l, 100)
	if len(entries) != 100 {
		t.Fatalf("buffer should cap at 100 entries, got %d", len(entries))
	}
}

func TestGetRecentEntries(t *testing.T) {
	l := NewLogger(100)
	defer l.Shutdown()
	l.SetComponentEnabled(ComponentSystem, true)

	l.LogSystem(LogLevelInfo, "first", nil)
	l.LogSystem(LogLevelInfo, "second", nil)
	l.LogSystem(LogLevelInfo, "third", nil)
	waitForEntries(l, 3)

	recent := l.GetRecentEntries(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent entries, got %d", len(recent))
	}
	if recent[1].Message != "third" {
		t.Errorf("last recent entry = %q, want %q", recent[1].Message, "third")
	}
}
