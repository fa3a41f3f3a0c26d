package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/zatchheems/yactatt/config"
	"github.com/zatchheems/yactatt/display"
	"github.com/zatchheems/yactatt/transit"
)

// blinkPeriod is how long a blinking label stays on, and then off.
const blinkPeriod = 500 * time.Millisecond

// Layout places arrival rows on the panel. Y positions are text baselines.
type Layout struct {
	TopMargin int
	RowPitch  int
	RouteX    int
	EtaX      int
	DestX     int

	RouteColor display.Color
	EtaColor   display.Color
	DestColor  display.Color
	DelayColor display.Color
	BlinkDue   bool
}

func NewLayout(conf config.LayoutConfig) (Layout, error) {
	l := Layout{
		TopMargin: conf.TopMargin,
		RowPitch:  conf.RowPitch,
		RouteX:    conf.RouteX,
		EtaX:      conf.EtaX,
		DestX:     conf.DestX,
		BlinkDue:  conf.BlinkDue,
	}
	for _, c := range []struct {
		hex string
		dst *display.Color
	}{
		{conf.RouteRGB, &l.RouteColor},
		{conf.EtaRGB, &l.EtaColor},
		{conf.DestRGB, &l.DestColor},
		{conf.DelayRGB, &l.DelayColor},
	} {
		color, err := display.ParseHex(c.hex)
		if err != nil {
			return Layout{}, fmt.Errorf("layout: %w", err)
		}
		*c.dst = color
	}
	return l, nil
}

// DrawArrivals draws one row per arrival, in order. Rows whose baseline
// would fall below the panel are left out.
func (l Layout) DrawArrivals(c *display.Canvas, arrivals []transit.Arrival, now time.Time) {
	for i, a := range arrivals {
		y := l.TopMargin + i*l.RowPitch
		if y >= c.Height() {
			return
		}
		l.drawRow(c, a, y, now)
	}
}

func (l Layout) drawRow(c *display.Canvas, a transit.Arrival, y int, now time.Time) {
	routeColor := l.RouteColor
	if a.Line != "" {
		if lc, ok := display.LineColor(a.Line); ok {
			routeColor = lc
		}
	}
	c.DrawText(l.RouteX, y, a.Route, routeColor)

	etaColor := l.EtaColor
	if a.Delayed {
		etaColor = l.DelayColor
	}
	if !(l.BlinkDue && isDue(a.ETA) && blinkOff(now)) {
		c.DrawText(l.EtaX, y, a.ETA, etaColor)
	}

	// The last glyph needs no trailing gap.
	room := (c.Width() - l.DestX + 1) / display.GlyphWidth
	c.DrawText(l.DestX, y, truncate(a.Destination, room), l.DestColor)
}

func isDue(eta string) bool {
	return strings.EqualFold(strings.TrimSpace(eta), "due")
}

func blinkOff(now time.Time) bool {
	return (now.UnixMilli()/blinkPeriod.Milliseconds())%2 == 1
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
