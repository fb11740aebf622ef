package mapview

import (
	"strings"
	"sync"

	"traceguard/internal/domain"
)

// timestampPlaceholder is shown when a location carries no usable time.
const timestampPlaceholder = "time unknown"

// Adapter owns exactly one surface, one marker, and one popup for the life
// of the view. Mount is idempotent; after it, only the marker position,
// popup content, and viewport ever change.
type Adapter struct {
	mu         sync.Mutex
	newSurface func() Surface
	surface    Surface
}

// NewAdapter builds an adapter over a surface factory. The factory runs at
// most once per mounted lifetime.
func NewAdapter(newSurface func() Surface) *Adapter {
	return &Adapter{newSurface: newSurface}
}

// Mount creates the surface if it does not exist yet. Repeated mounts are
// no-ops.
func (a *Adapter) Mount() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mountLocked()
}

func (a *Adapter) mountLocked() {
	if a.surface == nil {
		a.surface = a.newSurface()
	}
}

// Unmount tears the surface down. A later Mount starts a fresh lifetime.
func (a *Adapter) Unmount() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.surface != nil {
		a.surface.Close()
		a.surface = nil
	}
}

// ShowLocation reprojects the active location onto the viewport. Exactly one
// location is rendered at a time; an absent location yields the default
// world view with a parked marker and no popup.
func (a *Adapter) ShowLocation(loc domain.ActiveLocation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mountLocked()

	if !loc.Present {
		a.surface.SetView(WorldCenter, WorldZoom)
		a.surface.MoveMarker(Sentinel)
		a.surface.ClosePopup()
		return
	}

	point := loc.Point()
	a.surface.MoveMarker(point)
	a.surface.SetView(point, FocusZoom)
	a.surface.SetPopup(popupContent(loc))
	a.surface.OpenPopup()
}

// popupContent renders the popup text: a locale-formatted timestamp, then
// the address when one exists. Missing times degrade to a placeholder.
func popupContent(loc domain.ActiveLocation) string {
	var b strings.Builder
	if loc.Timestamp != nil {
		b.WriteString(loc.Timestamp.Local().Format("Jan 2, 2006 3:04 PM"))
	} else {
		b.WriteString(timestampPlaceholder)
	}
	if loc.Address != "" {
		b.WriteString("\n")
		b.WriteString(loc.Address)
	}
	return b.String()
}
