package console

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceguard/internal/api"
	"traceguard/internal/domain"
	"traceguard/internal/fingerprint"
	"traceguard/internal/session"
)

func testFingerprint() *fingerprint.Generator {
	return fingerprint.NewWithProbe(func() fingerprint.Signals {
		return fingerprint.Signals{UserAgent: "test", CPUCount: "4"}
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConsole(svc Service, view ActiveView) (*Console, session.Store) {
	sess := session.NewMemoryStore()
	c := New(svc, sess, testFingerprint(), view, discardLogger(), WithDebounce(10*time.Millisecond))
	return c, sess
}

func TestConsoleLogin(t *testing.T) {
	t.Run("successful login persists the token", func(t *testing.T) {
		svc := &fakeService{}
		svc.loginFn = func(ctx context.Context, email, password, fp string) (api.LoginResult, error) {
			assert.NotEmpty(t, fp, "fingerprint must accompany every login")
			assert.Len(t, fp, 64)
			return api.LoginResult{Token: "tok-1", Email: email}, nil
		}
		c, sess := newTestConsole(svc, nil)

		require.NoError(t, c.Login(context.Background(), "admin@example.com", "hunter2hunter2"))

		token, err := sess.Read()
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
		assert.True(t, c.Authenticated())
		assert.Equal(t, "admin@example.com", c.Email())
	})

	t.Run("rejected login leaves no token behind", func(t *testing.T) {
		svc := &fakeService{}
		svc.loginFn = func(ctx context.Context, email, password, fp string) (api.LoginResult, error) {
			return api.LoginResult{}, &api.Error{Kind: api.KindAuth, Status: 401, Message: "untrusted device"}
		}
		c, sess := newTestConsole(svc, nil)

		err := c.Login(context.Background(), "admin@example.com", "pw")
		require.Error(t, err)
		assert.True(t, api.IsAuth(err))

		token, _ := sess.Read()
		assert.Empty(t, token)
		assert.False(t, c.Authenticated())
	})
}

func TestConsoleChangePassword(t *testing.T) {
	svc := &fakeService{}
	svc.loginFn = func(ctx context.Context, email, password, fp string) (api.LoginResult, error) {
		return api.LoginResult{Token: "tok-old", Email: email}, nil
	}
	svc.changePwFn = func(ctx context.Context, oldPw, newPw string) (string, error) {
		return "tok-new", nil
	}
	c, sess := newTestConsole(svc, nil)
	require.NoError(t, c.Login(context.Background(), "a@b.c", "pw"))

	require.NoError(t, c.ChangePassword(context.Background(), "pw", "longenough-pw"))

	// The fresh token is persisted before ChangePassword returns; the old
	// one is never sent again.
	token, err := sess.Read()
	require.NoError(t, err)
	assert.Equal(t, "tok-new", token)
	assert.NotEqual(t, "tok-old", token)
}

func TestConsoleRefresh(t *testing.T) {
	svc := &fakeService{}
	svc.summaryFn = func(ctx context.Context) (domain.Summary, error) {
		return domain.Summary{Total: 3, Online: 2, Offline: 1}, nil
	}
	svc.listFn = func(ctx context.Context, q api.ListQuery) ([]domain.Device, error) {
		return []domain.Device{{DeviceID: "d1"}, {DeviceID: "d2"}, {DeviceID: "d3"}}, nil
	}
	c, _ := newTestConsole(svc, nil)

	require.NoError(t, c.Refresh(context.Background()))

	assert.Equal(t, 3, c.Summary().Total)
	assert.Len(t, c.Devices(), 3)
}

func TestConsoleSelectByID(t *testing.T) {
	svc := &fakeService{}
	svc.listFn = func(ctx context.Context, q api.ListQuery) ([]domain.Device, error) {
		return []domain.Device{{DeviceID: "d1", LastLocation: &domain.GeoPoint{Lat: 1, Lng: 2}}}, nil
	}
	c, _ := newTestConsole(svc, nil)
	require.NoError(t, c.Refresh(context.Background()))

	assert.False(t, c.SelectByID(context.Background(), "nope"))
	assert.Zero(t, svc.logCallCount())

	assert.True(t, c.SelectByID(context.Background(), "d1"))
	require.Eventually(t, func() bool { return c.Selection.Phase() == PhaseLoaded },
		time.Second, time.Millisecond)
	assert.Equal(t, 1.0, c.Selection.Active().Lat)
}

func TestConsoleLogout(t *testing.T) {
	svc := &fakeService{}
	svc.loginFn = func(ctx context.Context, email, password, fp string) (api.LoginResult, error) {
		return api.LoginResult{Token: "tok", Email: email}, nil
	}
	svc.listFn = func(ctx context.Context, q api.ListQuery) ([]domain.Device, error) {
		return []domain.Device{{DeviceID: "d1"}}, nil
	}
	svc.logsFn = func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
		return []domain.LocationLog{{ID: "L1", Lat: 5, Lng: 6, Timestamp: time.Now()}}, nil
	}
	view := &fakeView{}
	c, sess := newTestConsole(svc, view)

	require.NoError(t, c.Login(context.Background(), "a@b.c", "pw"))
	require.NoError(t, c.Refresh(context.Background()))
	require.True(t, c.SelectByID(context.Background(), "d1"))
	require.Eventually(t, func() bool { return c.Selection.Phase() == PhaseLoaded },
		time.Second, time.Millisecond)

	require.NoError(t, c.Logout())

	token, _ := sess.Read()
	assert.Empty(t, token)
	assert.False(t, c.Authenticated())
	assert.Empty(t, c.Devices())
	assert.Zero(t, c.Summary().Total)
	assert.Equal(t, PhaseIdle, c.Selection.Phase())
	assert.Empty(t, c.Selection.Logs())

	shown, ok := view.last()
	require.True(t, ok)
	assert.False(t, shown.Present, "map must fall back to the empty view on logout")
}
