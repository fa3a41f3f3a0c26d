package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatchheems/yactatt/display"
	"github.com/zatchheems/yactatt/transit"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeMatrix swaps buffers like a real platform and advances the clock by
// one frame on every swap. Every presented frame is kept as a copy.
type fakeMatrix struct {
	clock      *fakeClock
	frame      time.Duration
	front      *display.Canvas
	frames     []*display.Canvas
	brightness []int
}

func newFakeMatrix(clock *fakeClock) *fakeMatrix {
	return &fakeMatrix{
		clock: clock,
		frame: 100 * time.Millisecond,
		front: display.NewCanvas(64, 16),
	}
}

func (m *fakeMatrix) Canvas() *display.Canvas {
	return display.NewCanvas(64, 16)
}

func (m *fakeMatrix) SwapOnVSync(back *display.Canvas) *display.Canvas {
	snap := display.NewCanvas(back.Width(), back.Height())
	for y := 0; y < back.Height(); y++ {
		for x := 0; x < back.Width(); x++ {
			snap.Set(x, y, back.At(x, y))
		}
	}
	m.frames = append(m.frames, snap)
	m.clock.Advance(m.frame)
	old := m.front
	m.front = back
	return old
}

func (m *fakeMatrix) SetBrightness(percent int) {
	m.brightness = append(m.brightness, percent)
}

type fakeFetcher struct {
	clock    *fakeClock
	latency  time.Duration
	outcomes []transit.Outcome
	calls    int
	inFlight bool
	overlap  bool
	onFetch  func(call int)
}

func (f *fakeFetcher) Fetch(ctx context.Context) transit.Outcome {
	if f.inFlight {
		f.overlap = true
	}
	f.inFlight = true
	defer func() { f.inFlight = false }()

	f.calls++
	if f.onFetch != nil {
		f.onFetch(f.calls)
	}
	if f.clock != nil {
		f.clock.Advance(f.latency)
	}
	return f.outcomes[min(f.calls, len(f.outcomes))-1]
}

type recordingReporter struct {
	outcomes []transit.Outcome
}

func (r *recordingReporter) Report(outcome transit.Outcome) {
	r.outcomes = append(r.outcomes, outcome)
}

type fixedDimmer int

func (d fixedDimmer) Level(time.Time) int {
	return int(d)
}

func withFakeTime(s *Scheduler, clock *fakeClock) *[]time.Duration {
	var slept []time.Duration
	s.now = clock.Now
	s.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		clock.Advance(d)
		return ctx.Err()
	}
	return &slept
}

func newTestScheduler(t *testing.T, outcomes ...transit.Outcome) (*Scheduler, *fakeMatrix, *fakeFetcher, *fakeClock, *[]time.Duration) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	matrix := newFakeMatrix(clock)
	fetcher := &fakeFetcher{clock: clock, outcomes: outcomes}
	s := New(fetcher, matrix, testLayout(t), time.Second)
	slept := withFakeTime(s, clock)
	return s, matrix, fetcher, clock, slept
}

func isBlank(c *display.Canvas) bool {
	return len(colorsIn(c, 0, 0, c.Width(), c.Height())) == 0
}

func TestScheduler_RendersSortedArrivals(t *testing.T) {
	s, matrix, _, clock, slept := newTestScheduler(t, transit.Arrivals{
		{Route: "22", ETA: "5", Destination: "Howard"},
		{Route: "22", ETA: "DUE", Destination: "Harrison"},
	})
	start := clock.Now()

	require.NoError(t, s.Cycle(context.Background()))

	require.Len(t, matrix.frames, 10)
	assert.Empty(t, *slept)
	assert.Equal(t, start.Add(time.Second), clock.Now())
	assert.Equal(t, Idle, s.State())

	want := display.NewCanvas(64, 16)
	testLayout(t).DrawArrivals(want, []transit.Arrival{
		{Route: "22", ETA: "DUE", Destination: "Harrison"},
		{Route: "22", ETA: "5", Destination: "Howard"},
	}, start)
	for i, frame := range matrix.frames {
		assert.Equal(t, want, frame, "frame %d", i)
	}

	// the buffer handed back by the last swap is left clean
	assert.True(t, isBlank(s.canvas))
}

func TestScheduler_DeadlineIncludesFetchTime(t *testing.T) {
	s, matrix, fetcher, _, slept := newTestScheduler(t, transit.Arrivals{
		{Route: "22", ETA: "5", Destination: "Howard"},
	}, transit.ServiceErrors{{Route: "22", Message: "No service scheduled"}})
	fetcher.latency = 300 * time.Millisecond

	require.NoError(t, s.Cycle(context.Background()))
	assert.Len(t, matrix.frames, 7)

	require.NoError(t, s.Cycle(context.Background()))
	assert.Len(t, matrix.frames, 7)
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, *slept)
}

func TestScheduler_FailuresKeepPreviousFrame(t *testing.T) {
	tests := []struct {
		name    string
		outcome transit.Outcome
	}{
		{"service errors", transit.ServiceErrors{{Route: "22", Stop: "1836", Message: "No service scheduled"}}},
		{"decode error", transit.TransportFailure{Kind: transit.DecodeError, StatusCode: 200, Err: errors.New("bad json")}},
		{"unauthorized", transit.TransportFailure{Kind: transit.Unauthorized, StatusCode: 401}},
		{"no arrivals", transit.Arrivals{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, matrix, _, clock, slept := newTestScheduler(t, tt.outcome)
			start := clock.Now()

			require.NoError(t, s.Cycle(context.Background()))

			assert.Empty(t, matrix.frames)
			assert.Equal(t, []time.Duration{time.Second}, *slept)
			assert.Equal(t, start.Add(time.Second), clock.Now())
		})
	}
}

func TestScheduler_Headless(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	outcomes := []transit.Outcome{
		transit.Arrivals{{Route: "22", ETA: "5"}, {Route: "22", ETA: "DUE"}},
		transit.ServiceErrors{{Route: "22", Message: "No service scheduled"}},
		transit.TransportFailure{Kind: transit.BadRequest, StatusCode: 400},
	}
	fetcher := &fakeFetcher{clock: clock, outcomes: outcomes}
	reporter := &recordingReporter{}
	s := NewHeadless(fetcher, reporter, time.Minute)
	slept := withFakeTime(s, clock)

	for range outcomes {
		require.NoError(t, s.Cycle(context.Background()))
	}

	require.Len(t, reporter.outcomes, 3)
	assert.Equal(t, outcomes[1], reporter.outcomes[1])
	assert.Equal(t, outcomes[2], reporter.outcomes[2])
	arrivals := reporter.outcomes[0].(transit.Arrivals)
	assert.Equal(t, "DUE", arrivals[0].ETA)
	assert.Equal(t, []time.Duration{time.Minute, time.Minute, time.Minute}, *slept)

	assert.NoError(t, s.Splash(context.Background(), time.Second))
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s, _, fetcher, _, _ := newTestScheduler(t, transit.ServiceErrors{{Message: "No service scheduled"}})
	ctx, cancel := context.WithCancel(context.Background())
	fetcher.onFetch = func(call int) {
		if call == 3 {
			cancel()
		}
	}

	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, fetcher.calls)
	assert.False(t, fetcher.overlap)
	assert.Equal(t, Idle, s.State())
}

func TestScheduler_CancelledBeforeRender(t *testing.T) {
	s, matrix, _, _, _ := newTestScheduler(t, transit.Arrivals{{Route: "22", ETA: "5"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Cycle(ctx), context.Canceled)
	assert.Empty(t, matrix.frames)
}

func TestScheduler_AppliesDimmer(t *testing.T) {
	s, matrix, _, _, _ := newTestScheduler(t, transit.ServiceErrors{{Message: "No service scheduled"}})
	s.SetDimmer(fixedDimmer(3))

	require.NoError(t, s.Cycle(context.Background()))
	require.NoError(t, s.Cycle(context.Background()))

	assert.Equal(t, []int{3, 3}, matrix.brightness)
}

func TestScheduler_Splash(t *testing.T) {
	s, matrix, _, _, _ := newTestScheduler(t)

	require.NoError(t, s.Splash(context.Background(), 500*time.Millisecond))

	require.Len(t, matrix.frames, 5)
	want := display.NewCanvas(64, 16)
	DrawSplash(want)
	assert.Equal(t, want, matrix.frames[0])
	assert.True(t, isBlank(s.canvas))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "fetching", Fetching.String())
	assert.Equal(t, "rendering", Rendering.String())
}
