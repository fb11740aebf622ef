// Package console holds the controller layer: it owns all mutable client
// state and turns operator input into bounded service queries.
package console

import (
	"context"
	"sync"
	"time"

	"traceguard/internal/api"
	"traceguard/internal/domain"
)

// DefaultDebounce is the quiet period before a search input state is sent.
const DefaultDebounce = 350 * time.Millisecond

// DeviceLister is the slice of the API client the search controller needs.
type DeviceLister interface {
	ListDevices(ctx context.Context, query api.ListQuery) ([]domain.Device, error)
}

// SearchFilter coalesces free-text and date-range input into at most one
// in-flight device-list request per quiet period. Only the last input state
// within a quiet period is ever sent, and a result that arrives after a newer
// request was issued is discarded.
type SearchFilter struct {
	mu       sync.Mutex
	lister   DeviceLister
	debounce time.Duration
	loc      *time.Location

	timer *time.Timer
	text  string
	since *time.Time
	until *time.Time

	// reqSeq tags each issued request; only the latest may apply.
	reqSeq uint64

	onResults func([]domain.Device)
	onError   func(error)
}

// SearchOption configures a SearchFilter.
type SearchOption func(*SearchFilter)

// WithDebounce overrides the quiet period, mainly for tests.
func WithDebounce(d time.Duration) SearchOption {
	return func(f *SearchFilter) { f.debounce = d }
}

// WithLocation sets the calendar-local zone date input is interpreted in.
func WithLocation(loc *time.Location) SearchOption {
	return func(f *SearchFilter) { f.loc = loc }
}

// OnResults registers the sink for device-list results.
func OnResults(fn func([]domain.Device)) SearchOption {
	return func(f *SearchFilter) { f.onResults = fn }
}

// OnSearchError registers the sink for fetch failures.
func OnSearchError(fn func(error)) SearchOption {
	return func(f *SearchFilter) { f.onError = fn }
}

func NewSearchFilter(lister DeviceLister, opts ...SearchOption) *SearchFilter {
	f := &SearchFilter{
		lister:   lister,
		debounce: DefaultDebounce,
		loc:      time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// SetText updates the free-text filter and restarts the quiet period. Empty
// text means "no text filter", not "empty result set".
func (f *SearchFilter) SetText(text string) {
	f.mu.Lock()
	f.text = text
	f.restartLocked()
	f.mu.Unlock()
}

// SetSince sets the lower calendar-date bound and restarts the quiet period.
// Only the date's year, month, and day are honored.
func (f *SearchFilter) SetSince(day time.Time) {
	f.mu.Lock()
	f.since = &day
	f.restartLocked()
	f.mu.Unlock()
}

// SetUntil sets the upper calendar-date bound, inclusive of the named day.
func (f *SearchFilter) SetUntil(day time.Time) {
	f.mu.Lock()
	f.until = &day
	f.restartLocked()
	f.mu.Unlock()
}

// ClearDates drops both date bounds and restarts the quiet period.
func (f *SearchFilter) ClearDates() {
	f.mu.Lock()
	f.since, f.until = nil, nil
	f.restartLocked()
	f.mu.Unlock()
}

// Reset cancels any pending timer and invalidates in-flight requests so
// nothing writes back after a logout.
func (f *SearchFilter) Reset() {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.text = ""
	f.since, f.until = nil, nil
	f.reqSeq++
	f.mu.Unlock()
}

// restartLocked (re)arms the debounce timer. A change arriving before expiry
// cancels the pending fetch outright; it is never issued.
func (f *SearchFilter) restartLocked() {
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, f.fire)
}

func (f *SearchFilter) fire() {
	f.mu.Lock()
	query := api.ListQuery{Text: f.text}
	if f.since != nil {
		t := startOfDay(*f.since, f.loc).UTC()
		query.Since = &t
	}
	if f.until != nil {
		t := endOfDay(*f.until, f.loc).UTC()
		query.Until = &t
	}
	f.reqSeq++
	seq := f.reqSeq
	f.mu.Unlock()

	devices, err := f.lister.ListDevices(context.Background(), query)

	f.mu.Lock()
	stale := seq != f.reqSeq
	f.mu.Unlock()
	if stale {
		// A newer request was issued while this one was in flight; its
		// result owns the state now.
		return
	}

	if err != nil {
		if f.onError != nil {
			f.onError(err)
		}
		return
	}
	if f.onResults != nil {
		f.onResults(devices)
	}
}

func startOfDay(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}

// endOfDay keeps the named day an inclusive bound.
func endOfDay(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc)
}
