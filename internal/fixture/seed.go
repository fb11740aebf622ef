package fixture

import (
	"context"
	"time"

	"github.com/google/uuid"

	"traceguard/internal/domain"
)

// DeviceWriter is the write side of a device store. Both the memory and the
// Postgres variants implement it.
type DeviceWriter interface {
	UpsertDevice(ctx context.Context, d domain.Device) error
	InsertLog(ctx context.Context, l domain.LocationLog) error
}

// SeedDevices fills a store with a small believable fleet so the console has
// something to browse out of the box.
func SeedDevices(ctx context.Context, store DeviceWriter) error {
	now := time.Now().UTC()
	seen := func(ago time.Duration) *time.Time {
		t := now.Add(-ago)
		return &t
	}

	pixel := domain.Device{
		DeviceID:     "d-" + uuid.NewString()[:8],
		DeviceName:   "Ana's Pixel 8",
		Model:        "GKWS6",
		OSVersion:    "Android 14",
		InstallDate:  now.AddDate(0, -4, 0),
		LastSeen:     seen(12 * time.Minute),
		Status:       domain.StatusActive,
		LastLocation: &domain.GeoPoint{Lat: 52.5200, Lng: 13.4050},
	}
	galaxy := domain.Device{
		DeviceID:    "d-" + uuid.NewString()[:8],
		DeviceName:  "Warehouse S23",
		Model:       "SM-S911B",
		OSVersion:   "Android 14",
		InstallDate: now.AddDate(-1, 0, 0),
		LastSeen:    seen(36 * time.Hour),
		Status:      domain.StatusOffline,
	}
	moto := domain.Device{
		DeviceID:     "d-" + uuid.NewString()[:8],
		DeviceName:   "Courier Moto G",
		Model:        "moto g84",
		OSVersion:    "Android 13",
		InstallDate:  now.AddDate(0, -2, 0),
		LastSeen:     seen(3 * 24 * time.Hour),
		Status:       domain.StatusReinstalled,
		LastLocation: &domain.GeoPoint{Lat: 48.1351, Lng: 11.5820},
	}

	for _, d := range []domain.Device{pixel, galaxy, moto} {
		if err := store.UpsertDevice(ctx, d); err != nil {
			return err
		}
	}

	logs := []domain.LocationLog{
		{
			ID:        uuid.NewString(),
			DeviceID:  pixel.DeviceID,
			Lat:       52.5208,
			Lng:       13.4095,
			Address:   "Alexanderplatz, Berlin",
			Timestamp: now.Add(-12 * time.Minute),
			CreatedAt: now.Add(-11 * time.Minute),
		},
		{
			ID:        uuid.NewString(),
			DeviceID:  pixel.DeviceID,
			Lat:       52.5076,
			Lng:       13.3904,
			Address:   "Potsdamer Platz, Berlin",
			Timestamp: now.Add(-2 * time.Hour),
			CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			ID:        uuid.NewString(),
			DeviceID:  moto.DeviceID,
			Lat:       48.1374,
			Lng:       11.5755,
			Address:   "Marienplatz, München",
			Timestamp: now.Add(-3 * 24 * time.Hour),
			CreatedAt: now.Add(-3 * 24 * time.Hour),
		},
	}
	for _, l := range logs {
		if err := store.InsertLog(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
