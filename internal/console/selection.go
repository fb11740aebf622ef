package console

import (
	"context"
	"sync"
	"time"

	"traceguard/internal/domain"
)

// Phase is the selection state machine's position.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// LogFetcher is the slice of the API client the selection controller needs.
type LogFetcher interface {
	LocationLogs(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error)
}

// ActiveView receives every change of the map-driving location. The map
// adapter implements it.
type ActiveView interface {
	ShowLocation(loc domain.ActiveLocation)
}

// SelectionSync reacts to device selection: it clears the previous device's
// history synchronously, fetches the new device's logs, and derives the
// active location. Selection is the sole trigger of a log fetch, and rapid
// reselection is sequence-tagged so the latest selection always wins.
type SelectionSync struct {
	mu      sync.Mutex
	fetcher LogFetcher
	view    ActiveView

	phase  Phase
	device *domain.Device
	logs   []domain.LocationLog
	active domain.ActiveLocation
	errMsg string

	// seq invalidates in-flight fetches on reselect, deselect, and reset.
	seq uint64

	onChange func()
}

// SelectionOption configures a SelectionSync.
type SelectionOption func(*SelectionSync)

// OnSelectionChange registers a hook fired after every state change, after
// the view has been updated.
func OnSelectionChange(fn func()) SelectionOption {
	return func(s *SelectionSync) { s.onChange = fn }
}

func NewSelectionSync(fetcher LogFetcher, view ActiveView, opts ...SelectionOption) *SelectionSync {
	s := &SelectionSync{
		fetcher: fetcher,
		view:    view,
		phase:   PhaseIdle,
		active:  domain.NoLocation(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Select makes the device the current selection and starts the log fetch.
// Previous logs and active location are cleared before this returns, so no
// stale cross-device location is ever observable. The fetch itself completes
// asynchronously.
func (s *SelectionSync) Select(ctx context.Context, device domain.Device) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	d := device
	s.device = &d
	s.logs = nil
	s.active = domain.NoLocation()
	s.errMsg = ""
	s.phase = PhaseLoading
	s.notifyLocked()
	s.mu.Unlock()

	go func() {
		logs, err := s.fetcher.LocationLogs(ctx, device.DeviceID, nil, nil)
		s.apply(seq, device, logs, err)
	}()
}

// Deselect returns to Idle: no device, no logs, no active location. Any
// in-flight fetch for the previous selection is invalidated.
func (s *SelectionSync) Deselect() {
	s.mu.Lock()
	s.seq++
	s.device = nil
	s.logs = nil
	s.active = domain.NoLocation()
	s.errMsg = ""
	s.phase = PhaseIdle
	s.notifyLocked()
	s.mu.Unlock()
}

// Reset is Deselect under a different name, used on logout.
func (s *SelectionSync) Reset() {
	s.Deselect()
}

// ChooseLog makes a specific loaded history entry the active location. The
// phase does not change; only the map-driving value does. Unknown ids are
// ignored.
func (s *SelectionSync) ChooseLog(logID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.logs {
		if l.ID == logID {
			s.active = domain.ActiveFromLog(l)
			s.notifyLocked()
			return
		}
	}
}

func (s *SelectionSync) apply(seq uint64, device domain.Device, logs []domain.LocationLog, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		// The operator moved on; this response belongs to a superseded
		// selection.
		return
	}

	if err != nil {
		s.phase = PhaseFailed
		s.errMsg = err.Error()
		s.logs = nil
		s.active = fallbackLocation(device)
		s.notifyLocked()
		return
	}

	s.phase = PhaseLoaded
	s.errMsg = ""
	s.logs = logs
	if len(logs) > 0 {
		// Server order is newest-first; the first entry is the most
		// recent position.
		s.active = domain.ActiveFromLog(logs[0])
	} else {
		s.active = fallbackLocation(device)
	}
	s.notifyLocked()
}

func fallbackLocation(device domain.Device) domain.ActiveLocation {
	if device.LastLocation != nil {
		return domain.ActiveFromPoint(*device.LastLocation)
	}
	return domain.NoLocation()
}

func (s *SelectionSync) notifyLocked() {
	if s.view != nil {
		s.view.ShowLocation(s.active)
	}
	if s.onChange != nil {
		s.onChange()
	}
}

// Phase returns the current state machine position.
func (s *SelectionSync) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Device returns a copy of the current selection, if any.
func (s *SelectionSync) Device() (domain.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return domain.Device{}, false
	}
	return *s.device, true
}

// Logs returns the loaded history in server order.
func (s *SelectionSync) Logs() []domain.LocationLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LocationLog, len(s.logs))
	copy(out, s.logs)
	return out
}

// Active returns the location currently driving the map.
func (s *SelectionSync) Active() domain.ActiveLocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ErrMessage returns the user-visible failure text, empty outside Failed.
func (s *SelectionSync) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}
