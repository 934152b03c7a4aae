package fiber

import (
	"strings"
	"testing"
)

func TestResumeWithRunsBeforeBodyContinues(t *testing.T) {
	var events []string
	var fiberGID, injectGID uint64

	f, err := New(func(peer *Fiber) *Fiber {
		fiberGID = goroutineID()
		events = append(events, "entry")
		return peer
	})
	if err != nil {
		t.Fatalf("Expected fiber creation to succeed, got %v", err)
	}

	f, err = f.ResumeWith(func(caller *Fiber) *Fiber {
		injectGID = goroutineID()
		events = append(events, "inject")
		if !caller.Valid() {
			t.Error("Expected the injected function to receive the caller's handle")
		}
		return caller
	})
	if err != nil {
		t.Fatalf("Expected resume to succeed, got %v", err)
	}
	if f.Valid() {
		t.Error("Expected an empty handle after fiber completion")
	}

	want := "inject,entry"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("Expected events %q, got %q", want, got)
	}
	if injectGID != fiberGID {
		t.Errorf("Expected the injected function to run on the fiber's goroutine (%d), ran on %d", fiberGID, injectGID)
	}
	if injectGID == goroutineID() {
		t.Error("Expected the injected function not to run on the caller's goroutine")
	}
}

func TestResumeWithAtSuspensionPoint(t *testing.T) {
	var events []string

	f, err := New(func(peer *Fiber) *Fiber {
		events = append(events, "first")
		peer, _ = peer.Resume()
		events = append(events, "second")
		return peer
	})
	if err != nil {
		t.Fatalf("Expected fiber creation to succeed, got %v", err)
	}

	f, err = f.Resume()
	if err != nil {
		t.Fatalf("Expected resume to succeed, got %v", err)
	}

	f, err = f.ResumeWith(func(caller *Fiber) *Fiber {
		events = append(events, "inject")
		return caller
	})
	if err != nil {
		t.Fatalf("Expected resume to succeed, got %v", err)
	}
	if f.Valid() {
		t.Error("Expected an empty handle after fiber completion")
	}

	want := "first,inject,second"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("Expected events %q, got %q", want, got)
	}
}

func TestResumeWithRedirectsContinuation(t *testing.T) {
	var events []string
	var mainHandle *Fiber

	b, err := New(func(peer *Fiber) *Fiber {
		events = append(events, "b")
		if peer.Valid() {
			t.Error("Expected an empty peer after the predecessor completed")
		}
		return mainHandle
	})
	if err != nil {
		t.Fatalf("Expected fiber creation to succeed, got %v", err)
	}

	a, err := New(func(peer *Fiber) *Fiber {
		events = append(events, "a")
		// peer was redirected by the injected function: completing
		// here continues at fiber b, not at the original caller.
		return peer
	})
	if err != nil {
		t.Fatalf("Expected fiber creation to succeed, got %v", err)
	}

	a, err = a.ResumeWith(func(caller *Fiber) *Fiber {
		events = append(events, "inject")
		mainHandle = caller.Move()
		return b.Move()
	})
	if err != nil {
		t.Fatalf("Expected resume to succeed, got %v", err)
	}
	if a.Valid() {
		t.Error("Expected an empty handle once control returned through fiber b")
	}

	want := "inject,a,b"
	if got := strings.Join(events, ","); got != want {
		t.Errorf("Expected events %q, got %q", want, got)
	}
}

func TestResumeWithNilFuncPanics(t *testing.T) {
	f, err := New(func(peer *Fiber) *Fiber {
		peer, _ = peer.Resume()
		return peer
	})
	if err != nil {
		t.Fatalf("Expected fiber creation to succeed, got %v", err)
	}
	defer f.Close()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic but got none")
		}
	}()
	_, _ = f.ResumeWith(nil)
}
