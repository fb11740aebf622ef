package console

import (
	"context"
	"sync"
	"time"

	"traceguard/internal/api"
	"traceguard/internal/domain"
)

// fakeService is a hand-rolled Service double with per-op function hooks and
// a recorded call log. Unset hooks return zero values.
type fakeService struct {
	mu          sync.Mutex
	listCalls   []api.ListQuery
	logCalls    []string
	loginFn     func(ctx context.Context, email, password, fp string) (api.LoginResult, error)
	changePwFn  func(ctx context.Context, oldPw, newPw string) (string, error)
	summaryFn   func(ctx context.Context) (domain.Summary, error)
	getDeviceFn func(ctx context.Context, id string) (domain.Device, error)
	listFn      func(ctx context.Context, q api.ListQuery) ([]domain.Device, error)
	logsFn      func(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error)
}

func (f *fakeService) Login(ctx context.Context, email, password, fp string) (api.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password, fp)
	}
	return api.LoginResult{}, nil
}

func (f *fakeService) ChangePassword(ctx context.Context, oldPw, newPw string) (string, error) {
	if f.changePwFn != nil {
		return f.changePwFn(ctx, oldPw, newPw)
	}
	return "", nil
}

func (f *fakeService) Summary(ctx context.Context) (domain.Summary, error) {
	if f.summaryFn != nil {
		return f.summaryFn(ctx)
	}
	return domain.Summary{}, nil
}

func (f *fakeService) GetDevice(ctx context.Context, id string) (domain.Device, error) {
	if f.getDeviceFn != nil {
		return f.getDeviceFn(ctx, id)
	}
	return domain.Device{}, nil
}

func (f *fakeService) ListDevices(ctx context.Context, q api.ListQuery) ([]domain.Device, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, q)
	f.mu.Unlock()
	if f.listFn != nil {
		return f.listFn(ctx, q)
	}
	return nil, nil
}

func (f *fakeService) LocationLogs(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
	f.mu.Lock()
	f.logCalls = append(f.logCalls, deviceID)
	f.mu.Unlock()
	if f.logsFn != nil {
		return f.logsFn(ctx, deviceID, since, until)
	}
	return nil, nil
}

func (f *fakeService) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func (f *fakeService) lastListCall() (api.ListQuery, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.listCalls) == 0 {
		return api.ListQuery{}, false
	}
	return f.listCalls[len(f.listCalls)-1], true
}

func (f *fakeService) logCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logCalls)
}

// fakeView records every active location pushed at the map layer.
type fakeView struct {
	mu    sync.Mutex
	shown []domain.ActiveLocation
}

func (v *fakeView) ShowLocation(loc domain.ActiveLocation) {
	v.mu.Lock()
	v.shown = append(v.shown, loc)
	v.mu.Unlock()
}

func (v *fakeView) last() (domain.ActiveLocation, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.shown) == 0 {
		return domain.ActiveLocation{}, false
	}
	return v.shown[len(v.shown)-1], true
}
