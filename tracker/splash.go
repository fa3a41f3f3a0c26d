package tracker

import (
	"github.com/zatchheems/yactatt/display"
)

const productName = "YACTATT"

// DrawSplash tiles the panel with the eight rail line colors, two rows of
// four, and writes the product name across a black band in the middle.
func DrawSplash(c *display.Canvas) {
	w, h := c.Width()/4, c.Height()/2
	for i, name := range display.LineNames() {
		color, _ := display.LineColor(name)
		c.DrawRect((i%4)*w, (i/4)*h, w, h, color, true)
	}

	band := min(12, c.Height())
	c.DrawRect(0, (c.Height()-band)/2, c.Width(), band, display.Black, true)

	x := max((c.Width()-display.TextWidth(productName))/2, 0)
	c.DrawText(x, c.Height()/2+2, productName, display.SignGrey)
}
