package platform

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const viewerTitle = " YACTATT Frame Viewer "

// FrameStats summarizes a window of frame durations.
type FrameStats struct {
	Frames int
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Median time.Duration
	StdDev time.Duration
}

// Rate is the achieved refresh rate in Hz.
func (f FrameStats) Rate() float64 {
	if f.Mean <= 0 {
		return 0
	}
	return float64(time.Second) / float64(f.Mean)
}

func calculateStats(data []time.Duration) FrameStats {
	if len(data) == 0 {
		return FrameStats{}
	}

	var sum time.Duration
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += v
	}
	mean := float64(sum) / float64(len(data))

	sorted := slices.Clone(data)
	slices.Sort(sorted)
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2.0
	} else {
		median = float64(sorted[mid])
	}

	var sumOfSquares float64
	for _, v := range data {
		sumOfSquares += (float64(v) - mean) * (float64(v) - mean)
	}
	stdDev := math.Sqrt(sumOfSquares / float64(len(data)))

	return FrameStats{
		Frames: len(data),
		Min:    lo,
		Max:    hi,
		Mean:   time.Duration(math.Round(mean)),
		Median: time.Duration(math.Round(median)),
		StdDev: time.Duration(math.Round(stdDev)),
	}
}

// FrameViewer is a small TUI showing how steadily the panel refreshes.
type FrameViewer struct {
	tuiApp   *tview.Application
	view     *tview.TextView
	target   int
	ossignal chan os.Signal
	mu       sync.Mutex
	last     FrameStats
}

func NewFrameViewer(targetRate int, ossignal chan os.Signal) *FrameViewer {
	return &FrameViewer{
		tuiApp:   tview.NewApplication(),
		target:   targetRate,
		ossignal: ossignal,
	}
}

// Start runs the TUI until Stop is called. It should be called as a goroutine.
func (fv *FrameViewer) Start() {
	fv.setupUI()
	if err := fv.tuiApp.Run(); err != nil {
		slog.Error("Error running FrameViewer TUI", "error", err)
		fv.ossignal <- os.Interrupt
		return
	}
	slog.Info("FrameViewer TUI has stopped.")
}

func (fv *FrameViewer) Stop() {
	fv.tuiApp.Stop()
}

// Update is safe for concurrent use.
func (fv *FrameViewer) Update(stats FrameStats) {
	fv.mu.Lock()
	fv.last = stats
	text := fv.format(stats)
	fv.mu.Unlock()

	fv.tuiApp.QueueUpdateDraw(func() {
		if fv.view != nil {
			fv.view.SetText(text)
		}
	})
}

func (fv *FrameViewer) setupUI() {
	fv.view = tview.NewTextView()
	fv.view.SetDynamicColors(true)
	fv.view.SetTextAlign(tview.AlignLeft)
	fv.view.SetBackgroundColor(tcell.ColorDarkSlateGray)
	fv.view.SetBorder(true).SetTitle(viewerTitle).SetTitleColor(tcell.ColorLightBlue)
	fv.view.SetText(fv.format(FrameStats{}))

	intro := tview.NewTextView()
	intro.SetBorder(true).SetTitle(" YACTATT ").SetTitleColor(tcell.ColorLightBlue)
	intro.SetText("Hit [#ff0000]q[-] to exit, [#ff0000]r[-] to reload config file and restart")
	intro.SetTextAlign(tview.AlignCenter)
	intro.SetDynamicColors(true)
	intro.SetBackgroundColor(tcell.ColorDarkSlateGray)

	layout := tview.NewFlex().SetDirection(tview.FlexRow)
	layout.AddItem(intro, 3, 1, false)
	layout.AddItem(fv.view, 5, 1, true)
	layout.SetRect(1, 1, 72, 8)

	fv.tuiApp.SetRoot(layout, true).SetFocus(fv.view)
	fv.tuiApp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch string(event.Rune()) {
		case "q", "Q":
			fv.tuiApp.Stop()
			fv.ossignal <- os.Interrupt
		case "r", "R":
			fv.ossignal <- syscall.SIGHUP
		}
		return event
	})
}

func (fv *FrameViewer) format(s FrameStats) string {
	rateColor := "green"
	if s.Frames > 0 && s.Rate() < 0.9*float64(fv.target) {
		rateColor = "red"
	}
	line1 := fmt.Sprintf("[yellow]%-12s[white] [%8s|%8s|%8s]", " min|mean|max", s.Min, s.Mean, s.Max)
	line2 := fmt.Sprintf("[yellow]%-12s[white] %8s", " std dev", s.StdDev)
	line3 := fmt.Sprintf("[yellow]%-12s[white] [%s]%6.1f Hz[-] of %d Hz over %d frames", " refresh", rateColor, s.Rate(), fv.target, s.Frames)
	return line1 + "\n" + line2 + "\n" + line3
}
