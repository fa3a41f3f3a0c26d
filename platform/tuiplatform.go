package platform

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/zatchheems/yactatt/config"
	"github.com/zatchheems/yactatt/display"
	"github.com/zatchheems/yactatt/logging"
)

// Terminals cannot keep up with panel refresh rates.
const maxTUIRefresh = 30

type TUIPlatform struct {
	*AbstractPlatform
	tviewapp     *tview.Application
	intro        *tview.TextView
	matrix       *tview.TextView
	logView      *tview.TextView
	ossignalChan chan os.Signal
	logFlushOnce sync.Once
	readyChan    chan bool
	running      atomic.Bool
	lastText     string
}

func NewTUIPlatform(conf config.DisplayConfig, ossignalchan chan os.Signal) *TUIPlatform {
	inst := &TUIPlatform{
		ossignalChan: ossignalchan,
		readyChan:    make(chan bool),
	}
	inst.AbstractPlatform = newAbstractPlatform(conf, min(conf.RefreshRate, maxTUIRefresh), inst.tuiScan)
	inst.onStats = inst.showStats
	return inst
}

func (s *TUIPlatform) Ready() <-chan bool {
	return s.readyChan
}

func (s *TUIPlatform) Start() error {
	s.initSimulationTUI(s.ossignalChan)
	s.startDriver()
	return nil
}

func (s *TUIPlatform) Stop() {
	s.stopDriver()
	s.running.Store(false)
	if s.tviewapp != nil {
		s.tviewapp.Stop()
	}
}

func (s *TUIPlatform) getIntroText() string {
	line1 := fmt.Sprintf("Panel: [#ffff00]%dx%d[white] | Refresh: [#ffff00]%d Hz[white] (simulated at %d)",
		s.config.Cols, s.config.Rows, s.config.RefreshRate, min(s.config.RefreshRate, maxTUIRefresh))
	line2 := "Hit [#ff0000]q[-] to exit, [#ff0000]r[-] to reload, [#ff0000]Up/Down[-] to scroll logs"
	return line1 + "\n" + line2
}

func (s *TUIPlatform) initSimulationTUI(ossignal chan os.Signal) {
	s.tviewapp = tview.NewApplication()

	// --- Intro Pane ---
	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(s.getIntroText())
	s.intro.SetBorder(true).SetTitle(" YACTATT Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	// --- Matrix Pane ---
	s.matrix = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.matrix.SetBorder(true).SetTitle(" Panel ").SetTitleColor(tcell.ColorLightBlue)
	s.matrix.SetBackgroundColor(tcell.ColorBlack)

	// --- Log Pane ---
	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	// --- Layout ---
	// Two pixel rows per terminal line, 2 for the border.
	matrixHeight := (s.config.Rows+1)/2 + 2

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 4, 0, false).
		AddItem(s.matrix, matrixHeight, 0, false).
		AddItem(s.logView, 0, 1, true)

	// --- Flush logs after first draw ---
	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			logWriter := tview.ANSIWriter(s.logView)
			logging.SetOutput(logWriter)
			s.running.Store(true)
			close(s.readyChan)
		})
	})

	// --- Input Handling ---
	s.tviewapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			ossignal <- os.Interrupt
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				ossignal <- os.Interrupt
				return nil
			case 'r', 'R':
				ossignal <- syscall.SIGHUP
				return nil
			}
		case tcell.KeyUp:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row-1, col)
			return nil
		case tcell.KeyDown:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row+1, col)
			return nil
		}
		return event
	})

	// --- Start TUI ---
	go func() {
		if err := s.tviewapp.SetRoot(layout, true).Run(); err != nil {
			slog.Error("Error running TUI", "error", err)
			s.running.Store(false)
			s.ossignalChan <- os.Interrupt
		}
	}()
}

// tuiScan runs on the frame driver. The text is built here because front
// goes back to the scheduler on the next swap. The terminal keeps what it
// was given, so one draw per frame is enough.
func (s *TUIPlatform) tuiScan(front *display.Canvas, brightness int, _ time.Time) {
	if !s.running.Load() {
		return
	}
	text := renderMatrix(front)
	if text == s.lastText {
		return
	}
	s.lastText = text
	s.tviewapp.QueueUpdateDraw(func() {
		s.matrix.SetText(text)
	})
}

func (s *TUIPlatform) showStats(stats FrameStats) {
	if !s.running.Load() {
		return
	}
	title := fmt.Sprintf(" Panel | %.0f fps | brightness %d%% ", stats.Rate(), s.brightness.Load())
	s.tviewapp.QueueUpdateDraw(func() {
		s.matrix.SetTitle(title)
	})
}

// renderMatrix draws two pixel rows per line using upper half blocks:
// the foreground is the upper pixel, the background the lower one.
// Colors are shown unscaled so dim panels stay readable.
func renderMatrix(c *display.Canvas) string {
	var buf strings.Builder
	buf.Grow(c.Width() * (c.Height()/2 + 1) * len("[#000000:#000000]▀"))
	for y := 0; y < c.Height(); y += 2 {
		prev := ""
		for x := range c.Width() {
			tag := fmt.Sprintf("[%s:%s]", c.At(x, y).Hex(), c.At(x, y+1).Hex())
			if tag != prev {
				buf.WriteString(tag)
				prev = tag
			}
			buf.WriteString("▀")
		}
		buf.WriteString("[-:-]\n")
	}
	return buf.String()
}
