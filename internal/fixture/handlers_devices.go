package fixture

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"traceguard/internal/domain"
	"traceguard/pkg/platform/sentinel"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.devices.Summary(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "summary failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	query := DeviceQuery{Text: r.URL.Query().Get("q")}

	var ok bool
	if query.Since, ok = parseInstant(w, r.URL.Query().Get("since"), "since"); !ok {
		return
	}
	if query.Until, ok = parseInstant(w, r.URL.Query().Get("until"), "until"); !ok {
		return
	}

	devices, err := s.devices.List(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "device list failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.Device{"devices": devices})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.devices.Get(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "device not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "device lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]domain.Device{"device": device})
}

func (s *Server) handleLocationLogs(w http.ResponseWriter, r *http.Request) {
	var since, until *time.Time
	var ok bool
	if since, ok = parseInstant(w, r.URL.Query().Get("since"), "since"); !ok {
		return
	}
	if until, ok = parseInstant(w, r.URL.Query().Get("until"), "until"); !ok {
		return
	}

	logs, err := s.devices.Logs(r.Context(), chi.URLParam(r, "deviceID"), since, until)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			writeError(w, http.StatusNotFound, "device not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "log lookup failed")
		return
	}
	if logs == nil {
		logs = []domain.LocationLog{}
	}
	writeJSON(w, http.StatusOK, map[string][]domain.LocationLog{"logs": logs})
}

// parseInstant reads an RFC3339 query parameter. Absent is fine; malformed
// is a 400.
func parseInstant(w http.ResponseWriter, raw, name string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name+" timestamp")
		return nil, false
	}
	return &t, true
}
