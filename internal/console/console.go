package console

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"traceguard/internal/api"
	"traceguard/internal/domain"
	"traceguard/internal/fingerprint"
	"traceguard/internal/session"
)

// Service is the full API surface the console consumes. *api.Client
// satisfies it; tests substitute fakes.
type Service interface {
	Login(ctx context.Context, email, password, fp string) (api.LoginResult, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error)
	Summary(ctx context.Context) (domain.Summary, error)
	GetDevice(ctx context.Context, deviceID string) (domain.Device, error)
	DeviceLister
	LogFetcher
}

// Console wires the session, fingerprint, controllers, and map view into one
// operator-facing facade. It owns the cached device list and summary; there
// are no other writers.
type Console struct {
	svc     Service
	session session.Store
	fp      *fingerprint.Generator
	view    ActiveView
	log     *slog.Logger

	Search    *SearchFilter
	Selection *SelectionSync

	mu      sync.Mutex
	email   string
	devices []domain.Device
	summary domain.Summary
}

// New builds a console. The view may be nil when running headless (tests).
func New(svc Service, sess session.Store, fp *fingerprint.Generator, view ActiveView, log *slog.Logger, searchOpts ...SearchOption) *Console {
	c := &Console{
		svc:     svc,
		session: sess,
		fp:      fp,
		view:    view,
		log:     log,
	}
	opts := append([]SearchOption{OnResults(c.setDevices)}, searchOpts...)
	c.Search = NewSearchFilter(svc, opts...)
	c.Selection = NewSelectionSync(svc, view)
	return c
}

// Authenticated reports whether a token is persisted. Whether it is still
// valid is the server's call on the next request.
func (c *Console) Authenticated() bool {
	token, err := c.session.Read()
	return err == nil && token != ""
}

// Login computes the device fingerprint, presents it with the credentials,
// and persists the returned token. A rejected fingerprint surfaces as the
// service's auth error untouched.
func (c *Console) Login(ctx context.Context, email, password string) error {
	res, err := c.svc.Login(ctx, email, password, c.fp.Fingerprint())
	if err != nil {
		c.log.WarnContext(ctx, "login rejected", "email", email, "error", err)
		return err
	}
	if err := c.session.Write(res.Token); err != nil {
		return err
	}
	c.mu.Lock()
	c.email = res.Email
	c.mu.Unlock()
	c.log.InfoContext(ctx, "login accepted", "email", res.Email)
	return nil
}

// ChangePassword rotates the password and persists the fresh token before
// returning, so no later call can resend the superseded one.
func (c *Console) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	token, err := c.svc.ChangePassword(ctx, oldPassword, newPassword)
	if err != nil {
		return err
	}
	return c.session.Write(token)
}

// Logout clears session, device list, selection, logs, and active location
// before returning. In-flight fetches are invalidated by the controller
// resets, so nothing writes back into logged-out state.
func (c *Console) Logout() error {
	err := c.session.Clear()

	c.Search.Reset()
	c.Selection.Reset()
	c.mu.Lock()
	c.email = ""
	c.devices = nil
	c.summary = domain.Summary{}
	c.mu.Unlock()
	if c.view != nil {
		c.view.ShowLocation(domain.NoLocation())
	}
	return err
}

// Refresh pulls the summary and the unfiltered device list concurrently.
// Used right after login and on explicit operator request.
func (c *Console) Refresh(ctx context.Context) error {
	var (
		summary domain.Summary
		devices []domain.Device
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = c.svc.Summary(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		devices, err = c.svc.ListDevices(ctx, api.ListQuery{})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	c.summary = summary
	c.devices = devices
	c.mu.Unlock()
	return nil
}

// SelectByID looks the id up in the cached list and selects it. Returns
// false when the id is not in the current snapshot.
func (c *Console) SelectByID(ctx context.Context, deviceID string) bool {
	c.mu.Lock()
	var found *domain.Device
	for i := range c.devices {
		if c.devices[i].DeviceID == deviceID {
			found = &c.devices[i]
			break
		}
	}
	c.mu.Unlock()

	if found == nil {
		return false
	}
	c.Selection.Select(ctx, *found)
	return true
}

func (c *Console) setDevices(devices []domain.Device) {
	c.mu.Lock()
	c.devices = devices
	c.mu.Unlock()
}

// Devices returns the cached device snapshot.
func (c *Console) Devices() []domain.Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Device, len(c.devices))
	copy(out, c.devices)
	return out
}

// Summary returns the cached fleet counters.
func (c *Console) Summary() domain.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}

// Email returns the logged-in operator's address, if known this process.
func (c *Console) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.email
}
