package reactive

import "testing"

func TestEffectRunsImmediately(t *testing.T) {
	rt := testRuntime()

	runs := 0
	eff := NewEffect(rt, func() Cleanup {
		runs++
		return nil
	})
	defer eff.Dispose()

	if runs != 1 {
		t.Errorf("effect should run on creation, got %d runs", runs)
	}
}

func TestEffectTracksDependencies(t *testing.T) {
	rt := testRuntime()
	a := NewCell(rt, 1)
	b := NewCell(rt, 2)

	var seen []int
	eff := NewEffect(rt, func() Cleanup {
		seen = append(seen, a.Get()+b.Get())
		return nil
	})
	defer eff.Dispose()

	a.Set(10)
	b.Set(20)

	want := []int{3, 12, 30}
	if len(seen) != len(want) {
		t.Fatalf("expected %d runs, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("run %d: expected %d, got %d", i, want[i], seen[i])
		}
	}
}

// TestEffectDynamicDependencies checks that the dependency record is rebuilt
// from scratch on every run: once a conditional branch stops reading a cell,
// writes to that cell stop triggering the effect.
func TestEffectDynamicDependencies(t *testing.T) {
	rt := testRuntime()
	flag := NewCell(rt, true)
	a := NewCell(rt, "a")
	b := NewCell(rt, "b")

	runs := 0
	eff := NewEffect(rt, func() Cleanup {
		if flag.Get() {
			_ = a.Get()
		} else {
			_ = b.Get()
		}
		runs++
		return nil
	})
	defer eff.Dispose()

	if runs != 1 {
		t.Fatalf("expected 1 initial run, got %d", runs)
	}

	// b is not a dependency yet.
	b.Set("b2")
	if runs != 1 {
		t.Errorf("write to unread cell should not trigger, got %d runs", runs)
	}

	// Switch the branch: now b is tracked and a is not.
	flag.Set(false)
	if runs != 2 {
		t.Fatalf("expected 2 runs after branch switch, got %d", runs)
	}

	a.Set("a2")
	if runs != 2 {
		t.Errorf("dropped dependency should not trigger, got %d runs", runs)
	}

	b.Set("b3")
	if runs != 3 {
		t.Errorf("new dependency should trigger, got %d runs", runs)
	}
}

func TestEffectCleanupRunsBeforeRerunAndOnDispose(t *testing.T) {
	rt := testRuntime()
	c := NewCell(rt, 0)

	var events []string
	eff := NewEffect(rt, func() Cleanup {
		v := c.Get()
		events = append(events, "run")
		return func() {
			events = append(events, "cleanup")
			_ = v
		}
	})

	c.Set(1)
	eff.Dispose()

	want := []string{"run", "cleanup", "run", "cleanup"}
	if len(events) != len(want) {
		t.Fatalf("expected %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, events)
		}
	}
}

func TestEffectDisposeStopsNotifications(t *testing.T) {
	rt := testRuntime()
	c := NewCell(rt, 0)

	runs := 0
	eff := NewEffect(rt, func() Cleanup {
		_ = c.Get()
		runs++
		return nil
	})

	eff.Dispose()
	if !eff.Disposed() {
		t.Error("expected Disposed to report true")
	}

	c.Set(1)
	if runs != 1 {
		t.Errorf("disposed effect should not run, got %d runs", runs)
	}
}

func TestEffectDisposeIdempotent(t *testing.T) {
	rt := testRuntime()
	c := NewCell(rt, 0)

	cleanups := 0
	eff := NewEffect(rt, func() Cleanup {
		_ = c.Get()
		return func() { cleanups++ }
	})

	eff.Dispose()
	eff.Dispose()

	if cleanups != 1 {
		t.Errorf("cleanup should run exactly once, got %d", cleanups)
	}
}

// TestEffectSelfWriteDoesNotRecurse: an effect that writes to a cell it also
// reads must not re-enter itself. The notification is skipped and counted.
func TestEffectSelfWriteDoesNotRecurse(t *testing.T) {
	rt := testRuntime()
	c := NewCell(rt, 0)

	runs := 0
	eff := NewEffect(rt, func() Cleanup {
		v := c.Get()
		runs++
		if v == 0 {
			c.Set(v + 1)
		}
		return nil
	})
	defer eff.Dispose()

	if runs != 1 {
		t.Errorf("self-write must not re-enter, got %d runs", runs)
	}
	if got := c.Peek(); got != 1 {
		t.Errorf("write should still land, got %d", got)
	}
	if rt.Stats().SkippedNotifications != 1 {
		t.Errorf("expected 1 skipped notification, got %d", rt.Stats().SkippedNotifications)
	}

	// External writes still reach the effect afterwards.
	c.Set(10)
	if runs != 2 {
		t.Errorf("expected 2 runs after external write, got %d", runs)
	}
}

// TestEffectPanicReleasesStack: a panicking body must pop the execution stack,
// or later reads outside any effect would be attributed to it.
func TestEffectPanicReleasesStack(t *testing.T) {
	rt := testRuntime()
	c := NewCell(rt, 0)

	runs := 0
	func() {
		defer func() { _ = recover() }()
		NewEffect(rt, func() Cleanup {
			_ = c.Get()
			runs++
			panic("boom")
		})
	}()

	if runs != 1 {
		t.Fatalf("expected 1 run before panic, got %d", runs)
	}

	// A read outside any effect must not subscribe anything. If the stack
	// leaked, this read would be credited to the panicked effect.
	_ = c.Get()

	other := 0
	eff := NewEffect(rt, func() Cleanup {
		_ = c.Get()
		other++
		return nil
	})
	defer eff.Dispose()

	c.Set(1)
	if other != 2 {
		t.Errorf("expected healthy effect to run twice, got %d", other)
	}
}

// TestNestedEffectsAttributeToInnermost: when an effect creates another
// effect, reads inside the inner body subscribe the inner effect only.
func TestNestedEffectsAttributeToInnermost(t *testing.T) {
	rt := testRuntime()
	outer := NewCell(rt, 1)
	inner := NewCell(rt, 2)

	outerRuns := 0
	innerRuns := 0
	var innerEff *Effect
	outerEff := NewEffect(rt, func() Cleanup {
		_ = outer.Get()
		outerRuns++
		if innerEff == nil {
			innerEff = NewEffect(rt, func() Cleanup {
				_ = inner.Get()
				innerRuns++
				return nil
			})
		}
		return nil
	})
	defer outerEff.Dispose()
	defer innerEff.Dispose()

	inner.Set(20)
	if innerRuns != 2 {
		t.Errorf("inner write should run inner effect, got %d runs", innerRuns)
	}
	if outerRuns != 1 {
		t.Errorf("inner write must not run outer effect, got %d runs", outerRuns)
	}

	outer.Set(10)
	if outerRuns != 2 {
		t.Errorf("outer write should run outer effect, got %d runs", outerRuns)
	}
}
