package service

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCooldownGuard_SingleAcquirePerWindow(t *testing.T) {
	guard := NewMemoryCooldownGuard()

	ok, err := guard.Acquire(context.Background(), "tut", "stu", time.Hour)
	if err != nil || !ok {
		t.Fatalf("first acquire: (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = guard.Acquire(context.Background(), "tut", "stu", time.Hour)
	if err != nil || ok {
		t.Fatalf("second acquire within window: (%v, %v), want (false, nil)", ok, err)
	}
}

func TestMemoryCooldownGuard_ExpiresAfterWindow(t *testing.T) {
	guard := NewMemoryCooldownGuard()

	if ok, _ := guard.Acquire(context.Background(), "tut", "stu", time.Millisecond); !ok {
		t.Fatalf("first acquire should succeed")
	}
	time.Sleep(5 * time.Millisecond)
	if ok, _ := guard.Acquire(context.Background(), "tut", "stu", time.Hour); !ok {
		t.Fatalf("acquire after expiry should succeed")
	}
}

func TestMemoryCooldownGuard_PairsAreIndependent(t *testing.T) {
	guard := NewMemoryCooldownGuard()

	if ok, _ := guard.Acquire(context.Background(), "tut1", "stu", time.Hour); !ok {
		t.Fatalf("pair (tut1, stu) should acquire")
	}
	if ok, _ := guard.Acquire(context.Background(), "tut2", "stu", time.Hour); !ok {
		t.Fatalf("pair (tut2, stu) should acquire independently")
	}
	if ok, _ := guard.Acquire(context.Background(), "tut1", "other", time.Hour); !ok {
		t.Fatalf("pair (tut1, other) should acquire independently")
	}
}
