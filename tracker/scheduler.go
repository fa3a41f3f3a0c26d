// Package tracker runs the poll and render cycle of the sign.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/zatchheems/yactatt/display"
	"github.com/zatchheems/yactatt/transit"
)

// Fetcher performs one poll of the upstream service.
type Fetcher interface {
	Fetch(ctx context.Context) transit.Outcome
}

// Reporter receives outcomes when there is no display.
type Reporter interface {
	Report(outcome transit.Outcome)
}

// Matrix is the double-buffered render surface.
type Matrix interface {
	Canvas() *display.Canvas
	SwapOnVSync(back *display.Canvas) *display.Canvas
	SetBrightness(percent int)
}

// Dimmer picks the brightness for a point in time.
type Dimmer interface {
	Level(now time.Time) int
}

type State int

const (
	Idle State = iota
	Fetching
	Rendering
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Rendering:
		return "rendering"
	default:
		return "idle"
	}
}

// Scheduler alternates strictly between fetching and rendering on a
// single goroutine. Only the render loop touches the canvas, and the
// canvas changes hands only through SwapOnVSync.
type Scheduler struct {
	fetcher  Fetcher
	matrix   Matrix
	reporter Reporter
	dimmer   Dimmer
	layout   Layout
	interval time.Duration
	canvas   *display.Canvas
	state    State

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a scheduler that draws on matrix.
func New(fetcher Fetcher, matrix Matrix, layout Layout, interval time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		matrix:   matrix,
		layout:   layout,
		interval: interval,
		canvas:   matrix.Canvas(),
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// NewHeadless creates a scheduler that hands every outcome to reporter
// and never draws.
func NewHeadless(fetcher Fetcher, reporter Reporter, interval time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		reporter: reporter,
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// SetDimmer enables brightness changes at the start of each cycle.
func (s *Scheduler) SetDimmer(d Dimmer) {
	s.dimmer = d
}

func (s *Scheduler) State() State {
	return s.state
}

func (s *Scheduler) setState(state State) {
	if s.state != state {
		slog.Debug("Scheduler state", "from", s.state, "to", state)
	}
	s.state = state
}

// Run repeats Cycle until ctx is done and returns ctx's error.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Starting tracker loop", "interval", s.interval, "headless", s.matrix == nil)
	for {
		if err := s.Cycle(ctx); err != nil {
			s.setState(Idle)
			return err
		}
	}
}

// Cycle runs one poll cycle: fetch, then render (or report) until the
// poll interval measured from the start of the fetch has passed.
// Transport and service failures never end the cycle early; the
// previous frame simply stays on the panel.
func (s *Scheduler) Cycle(ctx context.Context) error {
	start := s.now()
	deadline := start.Add(s.interval)

	s.setState(Fetching)
	outcome := s.fetcher.Fetch(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	s.setState(Rendering)
	arrivals, _ := outcome.(transit.Arrivals)
	transit.SortArrivals(arrivals)

	if s.matrix == nil {
		s.reporter.Report(outcome)
		return s.idleUntil(ctx, deadline)
	}

	logOutcome(outcome)
	if s.dimmer != nil {
		s.matrix.SetBrightness(s.dimmer.Level(start))
	}
	if len(arrivals) == 0 {
		return s.idleUntil(ctx, deadline)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.canvas.Clear(display.Black)
		s.layout.DrawArrivals(s.canvas, arrivals, s.now())
		s.canvas = s.matrix.SwapOnVSync(s.canvas)
		if !s.now().Before(deadline) {
			break
		}
	}
	s.canvas.Clear(display.Black)
	s.setState(Idle)
	return nil
}

// Splash shows the splash screen for d. It does nothing when headless.
func (s *Scheduler) Splash(ctx context.Context, d time.Duration) error {
	if s.matrix == nil || d <= 0 {
		return nil
	}
	start := s.now()
	for s.now().Sub(start) < d {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.canvas.Clear(display.Black)
		DrawSplash(s.canvas)
		s.canvas = s.matrix.SwapOnVSync(s.canvas)
	}
	s.canvas.Clear(display.Black)
	return nil
}

func (s *Scheduler) idleUntil(ctx context.Context, deadline time.Time) error {
	s.setState(Idle)
	if d := deadline.Sub(s.now()); d > 0 {
		return s.sleep(ctx, d)
	}
	return nil
}

func logOutcome(outcome transit.Outcome) {
	switch o := outcome.(type) {
	case transit.Arrivals:
		slog.Debug("Fetched arrivals", "count", len(o))
	case transit.ServiceErrors:
		for _, e := range o {
			slog.Warn("Service error, keeping last frame", "route", e.Route, "stop", e.Stop, "message", e.Message)
		}
	case transit.TransportFailure:
		slog.Warn("Fetch failed, keeping last frame", "kind", o.Kind.String(), "status", o.StatusCode, "error", o.Err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
