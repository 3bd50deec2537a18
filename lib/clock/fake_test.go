// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

func baseTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestFakeNow(t *testing.T) {
	fake := Fake(baseTime())
	if got := fake.Now(); !got.Equal(baseTime()) {
		t.Errorf("Now() = %v, want %v", got, baseTime())
	}
	fake.Advance(90 * time.Second)
	want := baseTime().Add(90 * time.Second)
	if got := fake.Now(); !got.Equal(want) {
		t.Errorf("Now() after advance = %v, want %v", got, want)
	}
}

func TestFakeAfterFiresAtDeadline(t *testing.T) {
	fake := Fake(baseTime())
	ch := fake.After(10 * time.Second)

	select {
	case <-ch:
		t.Fatal("After fired before the clock advanced")
	default:
	}

	fake.Advance(10 * time.Second)
	select {
	case fired := <-ch:
		want := baseTime().Add(10 * time.Second)
		if !fired.Equal(want) {
			t.Errorf("fire time = %v, want %v", fired, want)
		}
	default:
		t.Fatal("After did not fire after advancing past the deadline")
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fake := Fake(baseTime())
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFakeTickerRepeats(t *testing.T) {
	fake := Fake(baseTime())
	ticker := fake.NewTicker(time.Second)
	defer ticker.Stop()

	for tick := 1; tick <= 3; tick++ {
		fake.Advance(time.Second)
		select {
		case fired := <-ticker.C:
			want := baseTime().Add(time.Duration(tick) * time.Second)
			if !fired.Equal(want) {
				t.Errorf("tick %d fired at %v, want %v", tick, fired, want)
			}
		default:
			t.Fatalf("tick %d missing", tick)
		}
	}
}

func TestFakeTickerDropsWhenFull(t *testing.T) {
	fake := Fake(baseTime())
	ticker := fake.NewTicker(time.Second)
	defer ticker.Stop()

	// Three intervals with no reader: only one tick is buffered.
	fake.Advance(3 * time.Second)

	<-ticker.C
	select {
	case <-ticker.C:
		t.Fatal("ticker queued more than one tick")
	default:
	}
}

func TestFakeTickerStop(t *testing.T) {
	fake := Fake(baseTime())
	ticker := fake.NewTicker(time.Second)
	ticker.Stop()

	fake.Advance(5 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}
