// Package mapview projects the active location onto a single map surface.
// Rendering internals belong to the surface implementation; this package only
// ever sets the view, moves the one marker, and manages the one popup.
package mapview

import "traceguard/internal/domain"

// Zoom levels for the two viewport modes.
const (
	WorldZoom = 2
	FocusZoom = 16
)

// Sentinel is where the marker parks when there is nothing to show. It is a
// placeholder, not a position.
var Sentinel = domain.GeoPoint{Lat: 0, Lng: 0}

// WorldCenter is the default wide-view center.
var WorldCenter = domain.GeoPoint{Lat: 0, Lng: 0}

// Surface is the narrow drawing contract against the external map library.
type Surface interface {
	SetView(center domain.GeoPoint, zoom int)
	MoveMarker(pos domain.GeoPoint)
	SetPopup(content string)
	OpenPopup()
	ClosePopup()
	// Close detaches listeners and releases the surface.
	Close()
}
