package lcdplayer

import (
	"sync"
	"testing"
	"time"
)

func neverStop() bool    { return false }
func alwaysReady() bool  { return true }

func TestQueuePushPopFIFO(t *testing.T) {
	q := NewQueue[int](4)
	for i := 0; i < 4; i++ {
		if !q.Push(i, neverStop, alwaysReady) {
			t.Fatalf("push %d should have succeeded", i)
		}
	}
	if got := q.Len(); got != 4 {
		t.Fatalf("Len() = %d, want 4", got)
	}
	for i := 0; i < 4; i++ {
		v, ok := q.Pop(neverStop, alwaysReady)
		if !ok || v != i {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
}

func TestQueuePushBlocksUntilRoom(t *testing.T) {
	q := NewQueue[int](1)
	if !q.Push(1, neverStop, alwaysReady) {
		t.Fatal("first push should succeed")
	}

	done := make(chan bool, 1)
	go func() {
		done <- q.Push(2, neverStop, alwaysReady)
	}()

	select {
	case <-done:
		t.Fatal("second push returned before any room was freed")
	case <-time.After(50 * time.Millisecond):
	}

	if _, ok := q.Pop(neverStop, alwaysReady); !ok {
		t.Fatal("pop should have succeeded")
	}

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("second push should have succeeded once room was freed")
		}
	case <-time.After(time.Second):
		t.Fatal("second push never unblocked after room was freed")
	}
}

func TestQueueShouldStopUnblocksWaiters(t *testing.T) {
	q := NewQueue[int](1)
	var stop atomicBool

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop(stop.Load, alwaysReady)
		done <- ok
	}()

	select {
	case <-done:
		t.Fatal("pop on an empty queue returned before shouldStop was set")
	case <-time.After(50 * time.Millisecond):
	}

	stop.Store(true)
	q.BroadcastAll()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("pop should report ok=false once shouldStop is set")
		}
	case <-time.After(time.Second):
		t.Fatal("pop never unblocked after shouldStop was set")
	}
}

func TestQueueMayProceedGatesEvenWhenNonEmpty(t *testing.T) {
	q := NewQueue[int](4)
	q.Push(1, neverStop, alwaysReady)

	var mayProceed atomicBool // starts false: flush in progress

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop(neverStop, mayProceed.Load)
		done <- ok
	}()

	select {
	case <-done:
		t.Fatal("pop proceeded while mayProceed was false, even though the queue had an item")
	case <-time.After(50 * time.Millisecond):
	}

	mayProceed.Store(true)
	q.BroadcastAll()

	select {
	case ok := <-done:
		if !ok {
			t.Fatal("pop should succeed once mayProceed becomes true")
		}
	case <-time.After(time.Second):
		t.Fatal("pop never unblocked after mayProceed became true")
	}
}

type atomicBool struct {
	mu sync.Mutex
	v  bool
}

func (a *atomicBool) Load() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.v
}

func (a *atomicBool) Store(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.v = v
}
