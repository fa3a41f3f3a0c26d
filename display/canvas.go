package display

// Canvas is an off-screen pixel buffer. All drawing happens here; nothing
// reaches the panel until the canvas is handed to a driver for swapping.
// Coordinates outside the canvas are clipped silently.
type Canvas struct {
	width  int
	height int
	pixels []Color
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  width,
		height: height,
		pixels: make([]Color, width*height),
	}
}

func (c *Canvas) Width() int {
	return c.width
}

func (c *Canvas) Height() int {
	return c.height
}

func (c *Canvas) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// Set colors a single pixel.
func (c *Canvas) Set(x, y int, color Color) {
	if c.inside(x, y) {
		c.pixels[y*c.width+x] = color
	}
}

// At returns the pixel at x, y, or Black outside the canvas.
func (c *Canvas) At(x, y int) Color {
	if !c.inside(x, y) {
		return Black
	}
	return c.pixels[y*c.width+x]
}

// Clear fills the whole canvas with color.
func (c *Canvas) Clear(color Color) {
	for i := range c.pixels {
		c.pixels[i] = color
	}
}

// DrawLine draws a one pixel wide line between both points (inclusive).
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.Set(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// DrawRect draws a w x h rectangle with its top left corner at x, y,
// either filled or as a one pixel outline.
func (c *Canvas) DrawRect(x, y, w, h int, color Color, fill bool) {
	if w <= 0 || h <= 0 {
		return
	}
	if fill {
		for yy := y; yy < y+h; yy++ {
			for xx := x; xx < x+w; xx++ {
				c.Set(xx, yy, color)
			}
		}
		return
	}
	c.DrawLine(x, y, x+w-1, y, color)
	c.DrawLine(x, y+h-1, x+w-1, y+h-1, color)
	c.DrawLine(x, y, x, y+h-1, color)
	c.DrawLine(x+w-1, y, x+w-1, y+h-1, color)
}

// DrawText renders text with the built-in 4x6 font. y is the baseline:
// the bottom row of the glyphs lands on y. Returns the x position after
// the last glyph.
func (c *Canvas) DrawText(x, y int, text string, color Color) int {
	top := y - glyphRows + 1
	for _, r := range text {
		g := lookupGlyph(r)
		for row := 0; row < glyphRows; row++ {
			for col := 0; col < glyphCols; col++ {
				if g[row]&(1<<(glyphCols-1-col)) != 0 {
					c.Set(x+col, top+row, color)
				}
			}
		}
		x += GlyphWidth
	}
	return x
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
