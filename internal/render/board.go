// Package render draws the bot's view of the board in a terminal.
package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/freeeve/taobot/pkg/generals"
)

const cellWidth = 4

var (
	plainStyle   = lipgloss.NewStyle()
	mineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	enemyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	safeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	terrainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	generalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Bold(true)

	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
)

// clearScreen moves the cursor home and clears below it.
const clearScreen = "\x1b[H\x1b[J"

// Board writes a fresh frame to out on every publish. It is a bot.FrameSink.
type Board struct {
	mu    sync.Mutex
	out   io.Writer
	clear bool
}

// NewBoard creates a Board. With clear set every frame replaces the
// previous one on screen.
func NewBoard(out io.Writer, clear bool) *Board {
	return &Board{out: out, clear: clear}
}

func (b *Board) Publish(_ context.Context, g *generals.Grid) error {
	frame := Render(g)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clear {
		frame = clearScreen + frame
	}
	_, err := io.WriteString(b.out, frame)
	return err
}

// Render draws the grid one row per line, each cell showing its army
// magnitude in a fixed-width column.
func Render(g *generals.Grid) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("turn %d  %s", g.Turn(), g.Color())))
	sb.WriteByte('\n')

	cursor, hasCursor := g.Cursor()
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			at := generals.Coord{Row: r, Col: c}
			style := styleFor(g.Cell(at))
			if hasCursor && at == cursor {
				style = cursorStyle
			}
			if g.Cell(at).Type == generals.General {
				style = generalStyle
			}
			sb.WriteString(style.Render(fixedWidth(g.Army(at), cellWidth)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func styleFor(c generals.Cell) lipgloss.Style {
	switch {
	case c.Mine:
		return mineStyle
	case c.Enemy:
		return enemyStyle
	case c.Type == generals.Mountain, c.Type == generals.Obstacle, c.Type == generals.City:
		return terrainStyle
	case c.Type == generals.Fog && c.Influence > 0:
		return warnStyle
	case c.Type == generals.Fog && c.Influence < 0:
		return safeStyle
	}
	return plainStyle
}

// fixedWidth pads the army magnitude to width. Values that do not fit, and
// the impassable sentinel, print as dashes.
func fixedWidth(army, width int) string {
	if army < 0 {
		army = -army
	}
	s := strconv.Itoa(army)
	if army == generals.Infinity || len(s) > width {
		s = strings.Repeat("-", min(2, width))
	}
	return s + strings.Repeat(" ", width-len(s))
}
