package commands

import "strings"

// canvas is a fixed grid of cells that later drawing overwrites.
type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: max(0, w), h: max(0, h)}
	c.cells = make([][]rune, c.h)
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", c.w))
	}
	return c
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && x < c.w && y >= 0 && y < c.h {
		c.cells[y][x] = r
	}
}

// text writes s from (x, y), clipped to the canvas.
func (c *canvas) text(x, y int, s string) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r)
	}
}

// box draws an opaque bordered rectangle.
func (c *canvas) box(x, y, w, h int) {
	if w < 2 || h < 2 {
		return
	}
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			r := ' '
			switch {
			case (row == y || row == y+h-1) && (col == x || col == x+w-1):
				r = '+'
			case row == y || row == y+h-1:
				r = '-'
			case col == x || col == x+w-1:
				r = '|'
			}
			c.set(col, row, r)
		}
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.h)
	for y, row := range c.cells {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}
