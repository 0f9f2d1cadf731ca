package app

import (
	"sync"
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	snapshot := NewMetrics().Snapshot()
	if snapshot.FrameCount != 0 {
		t.Errorf("expected 0 frame count, got %d", snapshot.FrameCount)
	}
	if snapshot.MinFrameTimeNs != 0 {
		t.Errorf("expected 0 min frame time (sentinel handled), got %d", snapshot.MinFrameTimeNs)
	}
	if snapshot.DropRate() != 0 {
		t.Errorf("DropRate() = %v, want 0", snapshot.DropRate())
	}
}

func TestMetrics_RecordFrame(t *testing.T) {
	m := NewMetrics()

	m.RecordFrame(10 * time.Millisecond)
	m.RecordFrame(20 * time.Millisecond)
	m.RecordFrame(6 * time.Millisecond)

	snapshot := m.Snapshot()
	if snapshot.FrameCount != 3 {
		t.Errorf("expected 3 frames, got %d", snapshot.FrameCount)
	}
	if snapshot.MinFrameTimeNs != int64(6*time.Millisecond) {
		t.Errorf("expected min 6ms, got %d ns", snapshot.MinFrameTimeNs)
	}
	if snapshot.MaxFrameTimeNs != int64(20*time.Millisecond) {
		t.Errorf("expected max 20ms, got %d ns", snapshot.MaxFrameTimeNs)
	}
	if snapshot.LastFrameNs != int64(6*time.Millisecond) {
		t.Errorf("expected last 6ms, got %d ns", snapshot.LastFrameNs)
	}
	if snapshot.AvgFrameTime() != 12*time.Millisecond {
		t.Errorf("AvgFrameTime() = %v, want 12ms", snapshot.AvgFrameTime())
	}
}

func TestMetrics_DropRate(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 3; i++ {
		m.RecordFrame(time.Millisecond)
	}
	m.RecordDroppedFrame()
	m.RecordInput()

	snapshot := m.Snapshot()
	if snapshot.DropRate() != 25 {
		t.Errorf("DropRate() = %v, want 25", snapshot.DropRate())
	}
	if snapshot.InputCount != 1 {
		t.Errorf("InputCount = %d, want 1", snapshot.InputCount)
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(ms int) {
			defer wg.Done()
			m.RecordFrame(time.Duration(ms) * time.Millisecond)
		}(i)
	}
	wg.Wait()

	snapshot := m.Snapshot()
	if snapshot.FrameCount != 50 {
		t.Errorf("FrameCount = %d, want 50", snapshot.FrameCount)
	}
	if snapshot.MinFrameTimeNs != int64(time.Millisecond) || snapshot.MaxFrameTimeNs != int64(50*time.Millisecond) {
		t.Errorf("min/max = %d/%d", snapshot.MinFrameTimeNs, snapshot.MaxFrameTimeNs)
	}
}
