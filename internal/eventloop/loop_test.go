package eventloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
)

func TestLoop_RunsPostedFunctionsInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New()
		go func() { _ = l.Run(context.Background()) }()

		var got []int
		for i := range 5 {
			l.Post(func() { got = append(got, i) })
		}
		l.Close()
		<-l.Done()

		want := []int{0, 1, 2, 3, 4}
		if len(got) != len(want) {
			t.Fatalf("ran %d functions, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
			}
		}
	})
}

func TestLoop_PostFromManyGoroutines(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New()
		go func() { _ = l.Run(context.Background()) }()

		count := 0
		var wg sync.WaitGroup
		for range 50 {
			wg.Go(func() {
				l.Post(func() { count++ })
			})
		}
		wg.Wait()
		l.Close()
		<-l.Done()

		if count != 50 {
			t.Errorf("count = %d, want 50", count)
		}
	})
}

func TestLoop_PostAfterClose_ReturnsFalse(t *testing.T) {
	l := New()
	l.Close()
	if l.Post(func() {}) {
		t.Error("Post() after Close() = true, want false")
	}
}

func TestLoop_Call_ReturnsFunctionError(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New()
		go func() { _ = l.Run(context.Background()) }()
		defer l.Close()

		want := errors.New("boom")
		err := l.Call(context.Background(), func() error { return want })
		if !errors.Is(err, want) {
			t.Errorf("Call() = %v, want %v", err, want)
		}
	})
}

func TestLoop_Call_OnClosedLoop(t *testing.T) {
	l := New()
	l.Close()
	err := l.Call(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Call() = %v, want ErrClosed", err)
	}
}

func TestLoop_Call_ContextCanceled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New() // never run
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := l.Call(ctx, func() error { return nil })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Call() = %v, want context.Canceled", err)
		}
		l.Close()
	})
}

func TestLoop_Run_StopsOnContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := New()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- l.Run(ctx) }()

		cancel()
		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
		if l.Post(func() {}) {
			t.Error("Post() after Run returned = true, want false")
		}
	})
}
