package mapview

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"traceguard/internal/domain"
)

// TerminalSurface is the console's stand-in for a tile-rendering map: it
// prints viewport, marker, and popup changes as log-style lines.
type TerminalSurface struct {
	mu     sync.Mutex
	out    io.Writer
	popup  string
	open   bool
	closed bool
}

func NewTerminalSurface(out io.Writer) *TerminalSurface {
	return &TerminalSurface{out: out}
}

func (t *TerminalSurface) SetView(center domain.GeoPoint, zoom int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("map  view   center=(%.5f, %.5f) zoom=%d", center.Lat, center.Lng, zoom)
}

func (t *TerminalSurface) MoveMarker(pos domain.GeoPoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("map  marker (%.5f, %.5f)", pos.Lat, pos.Lng)
}

func (t *TerminalSurface) SetPopup(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.popup = content
}

func (t *TerminalSurface) OpenPopup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.open = true
	t.printf("map  popup  %s", strings.ReplaceAll(t.popup, "\n", " | "))
}

func (t *TerminalSurface) ClosePopup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.open {
		t.printf("map  popup  closed")
	}
	t.open = false
	t.popup = ""
}

func (t *TerminalSurface) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

func (t *TerminalSurface) printf(format string, args ...any) {
	if t.closed {
		return
	}
	fmt.Fprintf(t.out, format+"\n", args...)
}
