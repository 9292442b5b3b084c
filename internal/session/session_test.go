package session

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()

	if _, ok := store.Current(); ok {
		t.Fatal("empty store reported an active session")
	}

	store.Set(Session{Token: "tok-1", DisplayName: "alice"})
	sess, ok := store.Current()
	if !ok {
		t.Fatal("expected active session after Set")
	}
	if sess.Token != "tok-1" || sess.DisplayName != "alice" {
		t.Fatalf("unexpected session: %#v", sess)
	}

	store.Clear()
	if _, ok := store.Current(); ok {
		t.Fatal("session survived Clear")
	}
	store.Clear() // idempotent
}

func TestSetWithEmptyTokenIsInactive(t *testing.T) {
	store := NewStore()
	store.Set(Session{Token: "   "})
	if _, ok := store.Current(); ok {
		t.Fatal("blank token must not produce an active session")
	}
}

func TestInvalidateFiresOnce(t *testing.T) {
	store := NewStore()
	store.Set(Session{Token: "tok"})

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Invalidate() {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&wins); got != 1 {
		t.Fatalf("Invalidate returned true %d times, want exactly 1", got)
	}
	if _, ok := store.Current(); ok {
		t.Fatal("session still active after Invalidate")
	}
}

func TestInvalidateOnEmptyStore(t *testing.T) {
	if NewStore().Invalidate() {
		t.Fatal("Invalidate on an empty store must report false")
	}
}
