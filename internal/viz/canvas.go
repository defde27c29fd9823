package viz

import "strings"

// Canvas is a rune grid for terminal rendering. The origin is the
// top-left corner; out-of-range writes are dropped.
type Canvas struct {
	w, h  int
	cells [][]rune
}

func NewCanvas(w, h int) *Canvas {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = make([]rune, w)
	}
	c := &Canvas{w: w, h: h, cells: cells}
	c.Clear()
	return c
}

func (c *Canvas) Width() int  { return c.w }
func (c *Canvas) Height() int { return c.h }

func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

func (c *Canvas) Set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

// Line draws with Bresenham's algorithm.
func (c *Canvas) Line(x1, y1, x2, y2 int, r rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		c.Set(x1, y1, r)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
