package signal

import (
	"syscall"
	"testing"
	"time"
)

func TestNotifyContextCancelsOnInterrupt(t *testing.T) {
	ctx, stop := NotifyContext()
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGINT")
	}
}

func TestNotifyContextStopIsIdempotent(t *testing.T) {
	ctx, stop := NotifyContext()
	stop()
	stop()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("context should be cancelled after stop")
	}
}
