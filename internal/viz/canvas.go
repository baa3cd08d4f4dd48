package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// TrailFrames is how many frames a cell stays lit after its last write when
// fading is used instead of clearing.
const TrailFrames = 6

type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Color         [][]string
	life          [][]uint8
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h}
	c.alloc()
	return c
}

func (c *Canvas) alloc() {
	c.Grid = make([][]rune, c.Height)
	c.Color = make([][]string, c.Height)
	c.life = make([][]uint8, c.Height)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, c.Width)
		c.Color[i] = make([]string, c.Width)
		c.life[i] = make([]uint8, c.Width)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// Resize reallocates the canvas, dropping its content.
func (c *Canvas) Resize(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c.Width, c.Height = w, h
	c.alloc()
}

// SubWidth and SubHeight are the canvas size in sub-pixels.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// SetColor sets a pixel at (x, y) in sub-pixel coordinates and tints its
// cell. An empty colour keeps the cell's current tint. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) SetColor(x, y int, color string) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if color != "" {
		c.Color[row][col] = color
	}
	c.life[row][col] = TrailFrames
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Color[i][j] = ""
			c.life[i][j] = 0
		}
	}
}

// Fade ages every lit cell by one frame and blanks the ones that have not
// been written for TrailFrames frames.
func (c *Canvas) Fade() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			if c.life[i][j] == 0 {
				continue
			}
			c.life[i][j]--
			if c.life[i][j] == 0 {
				c.Grid[i][j] = blank
				c.Color[i][j] = ""
			}
		}
	}
}

// Fresh reports whether the cell was written since the last Fade.
func (c *Canvas) Fresh(row, col int) bool {
	return c.life[row][col] == TrailFrames
}

// DrawCircle draws a circle outline in sub-pixel coordinates using the
// midpoint algorithm.
func (c *Canvas) DrawCircle(cx, cy, r int, color string) {
	if r <= 0 {
		c.SetColor(cx, cy, color)
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		for _, p := range [8][2]int{
			{cx + x, cy + y}, {cx + y, cy + x}, {cx - y, cy + x}, {cx - x, cy + y},
			{cx - x, cy - y}, {cx - y, cy - x}, {cx + y, cy - x}, {cx + x, cy - y},
		} {
			c.SetColor(p[0], p[1], color)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// String returns the braille rows without colour, one line per row.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render draws the canvas with each lit cell passed through paint. paint
// receives the cell's rune, tint and whether it was written this frame.
func (c *Canvas) Render(paint func(cell string, color string, fresh bool) string) string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if r == blank {
				b.WriteRune(r)
				continue
			}
			b.WriteString(paint(string(r), c.Color[i][j], c.Fresh(i, j)))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
