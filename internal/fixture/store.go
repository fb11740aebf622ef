// Package fixture implements the admin API contract the console is written
// against: an in-process stand-in for the production backend, used for local
// development and end-to-end tests. Trust policy, token lifecycle, and
// filtering semantics match the real service.
package fixture

import (
	"context"
	"time"

	"traceguard/internal/domain"
)

// Admin is one operator account. Fingerprint is empty until the first
// successful login binds a trusted device.
type Admin struct {
	Email        string
	PasswordHash []byte
	Fingerprint  string
	// DeviceDesc is a human-readable summary of the trusted device, parsed
	// from the User-Agent seen at bind time.
	DeviceDesc string
}

// DeviceQuery filters the device list. Since/Until bound LastSeen.
type DeviceQuery struct {
	Text  string
	Since *time.Time
	Until *time.Time
}

// AdminStore holds operator accounts.
type AdminStore interface {
	Get(ctx context.Context, email string) (Admin, error)
	Save(ctx context.Context, admin Admin) error
}

// DeviceStore holds the registered fleet and its location history.
type DeviceStore interface {
	List(ctx context.Context, q DeviceQuery) ([]domain.Device, error)
	Get(ctx context.Context, deviceID string) (domain.Device, error)
	Logs(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error)
	Summary(ctx context.Context) (domain.Summary, error)
}

// TokenStore tracks the single current token id per account. Setting a new
// id invalidates every token issued before it.
type TokenStore interface {
	SetCurrent(ctx context.Context, email, tokenID string) error
	Current(ctx context.Context, email string) (string, error)
}
