package domain

import "time"

// ActiveLocation is the single position currently driving the map. It is
// derived state: the selected history entry, else the device's last known
// position, else nothing. Present reports whether real coordinates exist;
// when false the coordinates are a sentinel, not a place.
type ActiveLocation struct {
	Lat       float64
	Lng       float64
	Address   string
	Timestamp *time.Time
	Present   bool
}

// NoLocation is the "nothing to show" value.
func NoLocation() ActiveLocation {
	return ActiveLocation{}
}

// ActiveFromLog projects a history entry onto the map-driving value.
func ActiveFromLog(l LocationLog) ActiveLocation {
	ts := l.Timestamp
	return ActiveLocation{
		Lat:       l.Lat,
		Lng:       l.Lng,
		Address:   l.Address,
		Timestamp: &ts,
		Present:   true,
	}
}

// ActiveFromPoint projects a device's last known position. No timestamp or
// address travels with it.
func ActiveFromPoint(p GeoPoint) ActiveLocation {
	return ActiveLocation{Lat: p.Lat, Lng: p.Lng, Present: true}
}

// Point returns the coordinate pair.
func (a ActiveLocation) Point() GeoPoint {
	return GeoPoint{Lat: a.Lat, Lng: a.Lng}
}
