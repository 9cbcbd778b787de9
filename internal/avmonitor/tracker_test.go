package avmonitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBurstTracker_FirstTouchNeverTriggers(t *testing.T) {
	b := newBurstTracker()
	require.False(t, b.touch("/root/a.txt", time.Now()))
}

func TestBurstTracker_TriggersAfterThreshold(t *testing.T) {
	b := newBurstTracker()
	now := time.Now()

	var triggered bool
	for i := 0; i < burstThresholdCount+1; i++ {
		triggered = b.touch("/root/a.txt", now)
		now = now.Add(time.Second)
	}
	require.True(t, triggered)
}

func TestBurstTracker_ResetsAfterWindowElapses(t *testing.T) {
	b := newBurstTracker()
	now := time.Now()

	for i := 0; i < burstThresholdCount+1; i++ {
		b.touch("/root/a.txt", now)
		now = now.Add(time.Second)
	}

	now = now.Add(resetWindow + time.Second)
	require.False(t, b.touch("/root/a.txt", now), "count should reset once the window elapses")
}

func TestBurstTracker_RecentSiblingCount(t *testing.T) {
	b := newBurstTracker()
	now := time.Now()

	b.touch("/root/a.txt", now)
	b.touch("/root/b.txt", now)
	b.touch("/root/c.txt", now)
	b.touch("/other/d.txt", now)

	count := b.recentSiblingCount("/root", "/root/a.txt", now)
	require.Equal(t, 2, count, "b.txt and c.txt, excluding a.txt itself and the other directory")
}

func TestBurstTracker_SiblingCountExcludesStaleEntries(t *testing.T) {
	b := newBurstTracker()
	now := time.Now()

	b.touch("/root/a.txt", now)
	b.touch("/root/b.txt", now)

	later := now.Add(resetWindow + time.Second)
	count := b.recentSiblingCount("/root", "/root/a.txt", later)
	require.Equal(t, 0, count)
}

func TestBurstTracker_EvictionDropsStaleEntries(t *testing.T) {
	b := newBurstTracker()
	now := time.Now()
	b.touch("/root/a.txt", now)

	later := now.Add(2 * resetWindow)
	b.touch("/root/b.txt", later)

	b.mu.Lock()
	_, stillPresent := b.byPath["/root/a.txt"]
	b.mu.Unlock()
	require.False(t, stillPresent, "evictLocked should have dropped the stale entry")
}
