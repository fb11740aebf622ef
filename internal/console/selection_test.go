package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceguard/internal/api"
	"traceguard/internal/domain"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func testDevice(id string, last *domain.GeoPoint) domain.Device {
	return domain.Device{
		DeviceID:     id,
		DeviceName:   "Pixel 8",
		Model:        "GKWS6",
		Status:       domain.StatusActive,
		LastLocation: last,
	}
}

func TestSelectionAutoSelectsNewestLog(t *testing.T) {
	svc := &fakeService{}
	svc.logsFn = func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
		return []domain.LocationLog{
			{ID: "L1", DeviceID: deviceID, Lat: 52.52, Lng: 13.40, Timestamp: mustTime(t, "2024-01-02T00:00:00Z")},
			{ID: "L2", DeviceID: deviceID, Lat: 48.13, Lng: 11.58, Timestamp: mustTime(t, "2024-01-01T00:00:00Z")},
		}, nil
	}
	view := &fakeView{}
	sel := NewSelectionSync(svc, view)

	sel.Select(context.Background(), testDevice("d1", nil))

	require.Eventually(t, func() bool { return sel.Phase() == PhaseLoaded },
		time.Second, time.Millisecond)

	active := sel.Active()
	assert.True(t, active.Present)
	assert.Equal(t, 52.52, active.Lat)
	require.NotNil(t, active.Timestamp)
	assert.Equal(t, "2024-01-02T00:00:00Z", active.Timestamp.Format(time.RFC3339))

	// Server order is preserved, never re-sorted.
	logs := sel.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "L1", logs[0].ID)

	shown, ok := view.last()
	require.True(t, ok)
	assert.Equal(t, active, shown)
}

func TestSelectionEmptyLogsFallsBackToLastLocation(t *testing.T) {
	svc := &fakeService{}
	svc.logsFn = func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
		return nil, nil
	}
	sel := NewSelectionSync(svc, &fakeView{})

	sel.Select(context.Background(), testDevice("d1", &domain.GeoPoint{Lat: 1, Lng: 2}))

	require.Eventually(t, func() bool { return sel.Phase() == PhaseLoaded },
		time.Second, time.Millisecond)

	active := sel.Active()
	assert.True(t, active.Present)
	assert.Equal(t, 1.0, active.Lat)
	assert.Equal(t, 2.0, active.Lng)
	assert.Nil(t, active.Timestamp)
}

func TestSelectionClearsSynchronously(t *testing.T) {
	release := make(chan struct{})
	svc := &fakeService{}
	svc.logsFn = func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
		<-release
		return []domain.LocationLog{{ID: "L1", Lat: 9, Lng: 9, Timestamp: time.Now()}}, nil
	}
	sel := NewSelectionSync(svc, &fakeView{})

	sel.Select(context.Background(), testDevice("d1", nil))
	require.Eventually(t, func() bool { return sel.Phase() == PhaseLoaded || svcStarted(svc) },
		time.Second, time.Millisecond)

	// Reselect while d1's fetch hangs: the old logs and active location are
	// gone before the new fetch resolves.
	sel.Select(context.Background(), testDevice("d2", nil))
	assert.Equal(t, PhaseLoading, sel.Phase())
	assert.Empty(t, sel.Logs())
	assert.False(t, sel.Active().Present)
	close(release)
}

func svcStarted(svc *fakeService) bool {
	return svc.logCallCount() > 0
}

func TestSelectionLatestSelectionWins(t *testing.T) {
	releaseA := make(chan struct{})
	svc := &fakeService{}
	svc.logsFn = func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
		if deviceID == "a" {
			<-releaseA
			return []domain.LocationLog{{ID: "LA", Lat: 11, Lng: 11, Timestamp: time.Now()}}, nil
		}
		return []domain.LocationLog{{ID: "LB", Lat: 22, Lng: 22, Timestamp: time.Now()}}, nil
	}
	sel := NewSelectionSync(svc, &fakeView{})

	sel.Select(context.Background(), testDevice("a", nil))
	sel.Select(context.Background(), testDevice("b", nil))

	require.Eventually(t, func() bool { return sel.Phase() == PhaseLoaded },
		time.Second, time.Millisecond)
	require.Len(t, sel.Logs(), 1)
	assert.Equal(t, "LB", sel.Logs()[0].ID)

	// Device a's response lands late and must not clobber b's state.
	close(releaseA)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "LB", sel.Logs()[0].ID)
	assert.Equal(t, 22.0, sel.Active().Lat)
}

func TestSelectionFailure(t *testing.T) {
	svc := &fakeService{}
	svc.logsFn = func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
		return nil, &api.Error{Kind: api.KindNetwork, Message: "request failed: connection refused"}
	}
	sel := NewSelectionSync(svc, &fakeView{})

	sel.Select(context.Background(), testDevice("d1", &domain.GeoPoint{Lat: 3, Lng: 4}))

	// Never stuck in Loading; lands in Failed with the cached fallback.
	require.Eventually(t, func() bool { return sel.Phase() == PhaseFailed },
		time.Second, time.Millisecond)
	assert.Equal(t, "request failed: connection refused", sel.ErrMessage())
	assert.Empty(t, sel.Logs())
	assert.True(t, sel.Active().Present)
	assert.Equal(t, 3.0, sel.Active().Lat)
}

func TestSelectionChooseLog(t *testing.T) {
	svc := &fakeService{}
	svc.logsFn = func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
		return []domain.LocationLog{
			{ID: "L1", Lat: 1, Lng: 1, Timestamp: mustTime(t, "2024-01-02T00:00:00Z")},
			{ID: "L2", Lat: 2, Lng: 2, Timestamp: mustTime(t, "2024-01-01T00:00:00Z"), Address: "Alexanderplatz"},
		}, nil
	}
	sel := NewSelectionSync(svc, &fakeView{})
	sel.Select(context.Background(), testDevice("d1", nil))
	require.Eventually(t, func() bool { return sel.Phase() == PhaseLoaded },
		time.Second, time.Millisecond)

	sel.ChooseLog("L2")

	// Only the active location moves; the machine stays Loaded.
	assert.Equal(t, PhaseLoaded, sel.Phase())
	assert.Equal(t, 2.0, sel.Active().Lat)
	assert.Equal(t, "Alexanderplatz", sel.Active().Address)

	sel.ChooseLog("no-such-id")
	assert.Equal(t, 2.0, sel.Active().Lat)
}

func TestSelectionDeselect(t *testing.T) {
	svc := &fakeService{}
	svc.logsFn = func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
		return []domain.LocationLog{{ID: "L1", Lat: 1, Lng: 1, Timestamp: time.Now()}}, nil
	}
	view := &fakeView{}
	sel := NewSelectionSync(svc, view)

	sel.Select(context.Background(), testDevice("d1", nil))
	require.Eventually(t, func() bool { return sel.Phase() == PhaseLoaded },
		time.Second, time.Millisecond)

	sel.Deselect()

	assert.Equal(t, PhaseIdle, sel.Phase())
	assert.Empty(t, sel.Logs())
	assert.False(t, sel.Active().Present)
	_, selected := sel.Device()
	assert.False(t, selected)

	// Deselection alone triggers no fetch.
	before := svc.logCallCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, svc.logCallCount())
}
