package platform

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"

	"github.com/zatchheems/yactatt/config"
	"github.com/zatchheems/yactatt/display"
)

const (
	maxFrameHistory = 500
	// statsEvery is the number of frames between two onStats callbacks.
	statsEvery = 250
)

// scanFunc puts front on the output device. Devices without memory of
// their own keep refreshing it until deadline; the others draw it once.
type scanFunc func(front *display.Canvas, brightness int, deadline time.Time)

type AbstractPlatform struct {
	config     config.DisplayConfig
	scan       scanFunc
	onStats    func(FrameStats)
	frameTime  time.Duration
	front      *display.Canvas
	back       *display.Canvas
	swapChan   chan *display.Canvas
	returnChan chan *display.Canvas
	stopChan   chan struct{}
	stopOnce   sync.Once
	driverWg   sync.WaitGroup
	brightness atomic.Int32
	statsMu    sync.Mutex
	frameTimes *deque.Deque[time.Duration]
}

func newAbstractPlatform(conf config.DisplayConfig, refreshRate int, scan scanFunc) *AbstractPlatform {
	inst := &AbstractPlatform{
		config:     conf,
		scan:       scan,
		frameTime:  time.Second / time.Duration(max(refreshRate, 1)),
		front:      display.NewCanvas(conf.Cols, conf.Rows),
		back:       display.NewCanvas(conf.Cols, conf.Rows),
		swapChan:   make(chan *display.Canvas),
		returnChan: make(chan *display.Canvas, 1),
		stopChan:   make(chan struct{}),
		frameTimes: new(deque.Deque[time.Duration]),
	}
	inst.frameTimes.Grow(maxFrameHistory)
	inst.brightness.Store(int32(conf.Brightness))
	return inst
}

func (s *AbstractPlatform) Canvas() *display.Canvas {
	return s.back
}

func (s *AbstractPlatform) SetBrightness(percent int) {
	percent = min(max(percent, 1), 100)
	if old := s.brightness.Swap(int32(percent)); int(old) != percent {
		slog.Debug("Brightness changed", "from", old, "to", percent)
	}
}

// SwapOnVSync blocks until the frame driver reaches the next frame
// boundary. Once the platform is stopped it returns back unchanged.
func (s *AbstractPlatform) SwapOnVSync(back *display.Canvas) *display.Canvas {
	select {
	case s.swapChan <- back:
		return <-s.returnChan
	case <-s.stopChan:
		return back
	}
}

func (s *AbstractPlatform) FrameStats() FrameStats {
	s.statsMu.Lock()
	data := make([]time.Duration, s.frameTimes.Len())
	for i := range s.frameTimes.Len() {
		data[i] = s.frameTimes.At(i)
	}
	s.statsMu.Unlock()
	return calculateStats(data)
}

func (s *AbstractPlatform) recordFrame(d time.Duration) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if s.frameTimes.Len() == maxFrameHistory {
		s.frameTimes.PopFront()
	}
	s.frameTimes.PushBack(d)
}

func (s *AbstractPlatform) startDriver() {
	s.driverWg.Add(1)
	go s.frameDriver()
}

// stopDriver ends the frame driver and waits for it. Safe to call twice.
func (s *AbstractPlatform) stopDriver() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.driverWg.Wait()
}

func (s *AbstractPlatform) frameDriver() {
	defer s.driverWg.Done()
	last := time.Now()
	frames := 0
	for {
		select {
		case <-s.stopChan:
			slog.Info("Ending frame driver go-routine...")
			return
		case next := <-s.swapChan:
			s.returnChan <- s.front
			s.front = next
		default:
		}

		s.scan(s.front, int(s.brightness.Load()), last.Add(s.frameTime))

		if rest := s.frameTime - time.Since(last); rest > 0 {
			time.Sleep(rest)
		}
		now := time.Now()
		s.recordFrame(now.Sub(last))
		last = now

		frames++
		if s.onStats != nil && frames%statsEvery == 0 {
			s.onStats(s.FrameStats())
		}
	}
}
