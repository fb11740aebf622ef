package fixture

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"traceguard/internal/domain"
	"traceguard/pkg/platform/sentinel"
)

// In-memory stores keep the default fixture lightweight and testable. They
// intentionally favor clarity over performance.

type MemoryAdminStore struct {
	mu     sync.RWMutex
	admins map[string]Admin
}

func NewMemoryAdminStore() *MemoryAdminStore {
	return &MemoryAdminStore{admins: make(map[string]Admin)}
}

func (s *MemoryAdminStore) Get(_ context.Context, email string) (Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if admin, ok := s.admins[strings.ToLower(email)]; ok {
		return admin, nil
	}
	return Admin{}, sentinel.ErrNotFound
}

func (s *MemoryAdminStore) Save(_ context.Context, admin Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[strings.ToLower(admin.Email)] = admin
	return nil
}

type MemoryTokenStore struct {
	mu      sync.RWMutex
	current map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{current: make(map[string]string)}
}

func (s *MemoryTokenStore) SetCurrent(_ context.Context, email, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[strings.ToLower(email)] = tokenID
	return nil
}

func (s *MemoryTokenStore) Current(_ context.Context, email string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.current[strings.ToLower(email)]; ok {
		return id, nil
	}
	return "", sentinel.ErrNotFound
}

type MemoryDeviceStore struct {
	mu      sync.RWMutex
	devices map[string]domain.Device
	logs    map[string][]domain.LocationLog
}

func NewMemoryDeviceStore() *MemoryDeviceStore {
	return &MemoryDeviceStore{
		devices: make(map[string]domain.Device),
		logs:    make(map[string][]domain.LocationLog),
	}
}

// PutDevice inserts or replaces a device record.
func (s *MemoryDeviceStore) PutDevice(device domain.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[device.DeviceID] = device
}

// PutLogs replaces a device's history.
func (s *MemoryDeviceStore) PutLogs(deviceID string, logs []domain.LocationLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[deviceID] = logs
}

// UpsertDevice satisfies DeviceWriter.
func (s *MemoryDeviceStore) UpsertDevice(_ context.Context, device domain.Device) error {
	s.PutDevice(device)
	return nil
}

// InsertLog appends one history entry.
func (s *MemoryDeviceStore) InsertLog(_ context.Context, l domain.LocationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[l.DeviceID] = append(s.logs[l.DeviceID], l)
	return nil
}

func (s *MemoryDeviceStore) List(_ context.Context, q DeviceQuery) ([]domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]domain.Device, 0, len(s.devices))
	for _, d := range s.devices {
		if needle != "" && !deviceMatches(d, needle) {
			continue
		}
		if !seenWithin(d.LastSeen, q.Since, q.Until) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func deviceMatches(d domain.Device, needle string) bool {
	for _, field := range []string{d.DeviceID, d.DeviceName, d.Model} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func seenWithin(lastSeen, since, until *time.Time) bool {
	if since == nil && until == nil {
		return true
	}
	if lastSeen == nil {
		return false
	}
	if since != nil && lastSeen.Before(*since) {
		return false
	}
	if until != nil && lastSeen.After(*until) {
		return false
	}
	return true
}

func (s *MemoryDeviceStore) Get(_ context.Context, deviceID string) (domain.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.devices[deviceID]; ok {
		return d, nil
	}
	return domain.Device{}, sentinel.ErrNotFound
}

func (s *MemoryDeviceStore) Logs(_ context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.devices[deviceID]; !ok {
		return nil, sentinel.ErrNotFound
	}

	out := make([]domain.LocationLog, 0)
	for _, l := range s.logs[deviceID] {
		if since != nil && l.Timestamp.Before(*since) {
			continue
		}
		if until != nil && l.Timestamp.After(*until) {
			continue
		}
		out = append(out, l)
	}
	// The contract is timestamp-descending, newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *MemoryDeviceStore) Summary(_ context.Context) (domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.Summary{Total: len(s.devices)}
	for _, d := range s.devices {
		if d.Status == domain.StatusActive {
			summary.Online++
		}
	}
	summary.Offline = summary.Total - summary.Online
	return summary, nil
}
