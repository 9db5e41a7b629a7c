package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingDetector is a mock implementation of Detector
type countingDetector struct {
	mu    sync.Mutex
	pages []Page
	err   error
}

func (d *countingDetector) Detect(ctx context.Context, page Page) (*Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages = append(d.pages, page)
	if d.err != nil {
		return nil, d.err
	}
	return &Detection{}, nil
}

func (d *countingDetector) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pages)
}

func TestNavigationWatcher_SameAddressRunsOnce(t *testing.T) {
	detector := &countingDetector{}
	w := NewNavigationWatcher(detector, "1", nil)
	ctx := context.Background()

	detection, ran := w.Observe(ctx, Mutation{URL: amazonURL})
	assert.True(t, ran)
	assert.NotNil(t, detection)

	detection, ran = w.Observe(ctx, Mutation{URL: amazonURL})
	assert.False(t, ran)
	assert.Nil(t, detection)

	assert.Equal(t, 1, detector.count())
	assert.Equal(t, amazonURL, w.LastURL())
}

func TestNavigationWatcher_AddressChangeReruns(t *testing.T) {
	detector := &countingDetector{}
	var detections int
	w := NewNavigationWatcher(detector, "1", func(*Detection) { detections++ })
	ctx := context.Background()

	w.Observe(ctx, Mutation{URL: amazonURL})
	w.Observe(ctx, Mutation{URL: amazonURL + "/other"})
	w.Observe(ctx, Mutation{URL: amazonURL})

	assert.Equal(t, 3, detector.count())
	assert.Equal(t, 3, detections)
	assert.Equal(t, "1", detector.pages[0].TabID)
}

func TestNavigationWatcher_MissUpdatesLastURL(t *testing.T) {
	detector := &countingDetector{err: assert.AnError}
	w := NewNavigationWatcher(detector, "1", func(*Detection) {
		t.Error("onDetect must not run on failure")
	})
	ctx := context.Background()

	detection, ran := w.Observe(ctx, Mutation{URL: "https://example.com"})
	assert.True(t, ran)
	assert.Nil(t, detection)

	_, ran = w.Observe(ctx, Mutation{URL: "https://example.com"})
	assert.False(t, ran)
}

func TestNavigationWatcher_ReturnsPipelineResult(t *testing.T) {
	svc := NewDetectionService(&recordingNotifier{}, nil)
	w := NewNavigationWatcher(svc, "5", nil)

	detection, ran := w.Observe(context.Background(), Mutation{URL: amazonURL, Doc: mustDoc(t, amazonProductHTML)})

	assert.True(t, ran)
	require.NotNil(t, detection)
	require.NotNil(t, detection.Badge)
	assert.Equal(t, detection.Record, detection.Badge.Record)
	markup, err := detection.Badge.HTML()
	require.NoError(t, err)
	assert.Contains(t, markup, detection.Badge.ID)
}

func TestNavigationWatcher_Run(t *testing.T) {
	detector := &countingDetector{}
	w := NewNavigationWatcher(detector, "1", nil)

	mutations := make(chan Mutation, 4)
	mutations <- Mutation{URL: amazonURL}
	mutations <- Mutation{URL: amazonURL}
	mutations <- Mutation{URL: bestBuyURL}
	close(mutations)

	require.NoError(t, w.Run(context.Background(), mutations))
	assert.Equal(t, 2, detector.count())
}

func TestNavigationWatcher_RunStopsOnCancel(t *testing.T) {
	w := NewNavigationWatcher(&countingDetector{}, "1", nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, make(chan Mutation)) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNavigationTracker_PerTab(t *testing.T) {
	detector := &countingDetector{}
	var mu sync.Mutex
	seen := map[string]int{}
	tracker := NewNavigationTracker(detector, func(tabID string, _ *Detection) {
		mu.Lock()
		seen[tabID]++
		mu.Unlock()
	})
	ctx := context.Background()

	observe := func(tabID string) bool {
		_, ran := tracker.Observe(ctx, tabID, Mutation{URL: amazonURL})
		return ran
	}

	assert.True(t, observe("1"))
	assert.True(t, observe("2"), "tabs are independent")
	assert.False(t, observe("1"))

	tracker.Forget("1")
	assert.True(t, observe("1"), "closed tab starts fresh")

	assert.Equal(t, 3, detector.count())
	assert.Equal(t, 2, seen["1"])
	assert.Equal(t, 1, seen["2"])
}
