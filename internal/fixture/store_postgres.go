package fixture

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"traceguard/internal/domain"
	"traceguard/pkg/platform/sentinel"
)

const deviceSchema = `
CREATE TABLE IF NOT EXISTS devices (
	device_id    text PRIMARY KEY,
	device_name  text NOT NULL,
	model        text NOT NULL DEFAULT '',
	os_version   text NOT NULL DEFAULT '',
	install_date timestamptz NOT NULL,
	last_seen    timestamptz,
	status       text NOT NULL,
	last_lat     double precision,
	last_lng     double precision
);

CREATE TABLE IF NOT EXISTS location_logs (
	id         text PRIMARY KEY,
	device_id  text NOT NULL REFERENCES devices (device_id) ON DELETE CASCADE,
	lat        double precision NOT NULL,
	lng        double precision NOT NULL,
	address    text NOT NULL DEFAULT '',
	ts         timestamptz NOT NULL,
	created_at timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS location_logs_device_ts ON location_logs (device_id, ts DESC);
`

// PostgresDeviceStore persists the fleet in PostgreSQL for durable fixture
// deployments.
type PostgresDeviceStore struct {
	pool *pgxpool.Pool
}

func NewPostgresDeviceStore(pool *pgxpool.Pool) *PostgresDeviceStore {
	return &PostgresDeviceStore{pool: pool}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresDeviceStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, deviceSchema); err != nil {
		return fmt.Errorf("ensure device schema: %w", err)
	}
	return nil
}

// UpsertDevice inserts or replaces a device record.
func (s *PostgresDeviceStore) UpsertDevice(ctx context.Context, d domain.Device) error {
	var lat, lng *float64
	if d.LastLocation != nil {
		lat, lng = &d.LastLocation.Lat, &d.LastLocation.Lng
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO devices (device_id, device_name, model, os_version, install_date, last_seen, status, last_lat, last_lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (device_id) DO UPDATE SET
			device_name = EXCLUDED.device_name,
			model       = EXCLUDED.model,
			os_version  = EXCLUDED.os_version,
			install_date = EXCLUDED.install_date,
			last_seen   = EXCLUDED.last_seen,
			status      = EXCLUDED.status,
			last_lat    = EXCLUDED.last_lat,
			last_lng    = EXCLUDED.last_lng`,
		d.DeviceID, d.DeviceName, d.Model, d.OSVersion, d.InstallDate, d.LastSeen, d.Status.String(), lat, lng)
	if err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	return nil
}

// InsertLog appends one history entry.
func (s *PostgresDeviceStore) InsertLog(ctx context.Context, l domain.LocationLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO location_logs (id, device_id, lat, lng, address, ts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.DeviceID, l.Lat, l.Lng, l.Address, l.Timestamp, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert location log: %w", err)
	}
	return nil
}

func (s *PostgresDeviceStore) List(ctx context.Context, q DeviceQuery) ([]domain.Device, error) {
	sql := `SELECT device_id, device_name, model, os_version, install_date, last_seen, status, last_lat, last_lng
		FROM devices`
	var (
		where []string
		args  []any
	)
	if q.Text != "" {
		args = append(args, "%"+q.Text+"%")
		p := "$" + strconv.Itoa(len(args))
		where = append(where, "(device_id ILIKE "+p+" OR device_name ILIKE "+p+" OR model ILIKE "+p+")")
	}
	if q.Since != nil {
		args = append(args, *q.Since)
		where = append(where, "last_seen >= $"+strconv.Itoa(len(args)))
	}
	if q.Until != nil {
		args = append(args, *q.Until)
		where = append(where, "last_seen <= $"+strconv.Itoa(len(args)))
	}
	for i, clause := range where {
		if i == 0 {
			sql += " WHERE " + clause
		} else {
			sql += " AND " + clause
		}
	}
	sql += " ORDER BY device_id"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	devices := make([]domain.Device, 0)
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

func (s *PostgresDeviceStore) Get(ctx context.Context, deviceID string) (domain.Device, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT device_id, device_name, model, os_version, install_date, last_seen, status, last_lat, last_lng
		FROM devices WHERE device_id = $1`, deviceID)

	device, err := scanDevice(row)
	if err == pgx.ErrNoRows {
		return domain.Device{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.Device{}, fmt.Errorf("get device: %w", err)
	}
	return device, nil
}

func (s *PostgresDeviceStore) Logs(ctx context.Context, deviceID string, since, until *time.Time) ([]domain.LocationLog, error) {
	if _, err := s.Get(ctx, deviceID); err != nil {
		return nil, err
	}

	sql := `SELECT id, device_id, lat, lng, address, ts, created_at
		FROM location_logs WHERE device_id = $1`
	args := []any{deviceID}
	if since != nil {
		args = append(args, *since)
		sql += " AND ts >= $" + strconv.Itoa(len(args))
	}
	if until != nil {
		args = append(args, *until)
		sql += " AND ts <= $" + strconv.Itoa(len(args))
	}
	sql += " ORDER BY ts DESC"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list location logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.LocationLog, 0)
	for rows.Next() {
		var l domain.LocationLog
		if err := rows.Scan(&l.ID, &l.DeviceID, &l.Lat, &l.Lng, &l.Address, &l.Timestamp, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *PostgresDeviceStore) Summary(ctx context.Context) (domain.Summary, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT count(*), count(*) FILTER (WHERE status = 'ACTIVE') FROM devices`)

	var summary domain.Summary
	if err := row.Scan(&summary.Total, &summary.Online); err != nil {
		return domain.Summary{}, fmt.Errorf("device summary: %w", err)
	}
	summary.Offline = summary.Total - summary.Online
	return summary, nil
}

func scanDevice(row pgx.Row) (domain.Device, error) {
	var (
		d        domain.Device
		status   string
		lat, lng *float64
	)
	if err := row.Scan(&d.DeviceID, &d.DeviceName, &d.Model, &d.OSVersion,
		&d.InstallDate, &d.LastSeen, &status, &lat, &lng); err != nil {
		return domain.Device{}, err
	}
	d.Status, _ = domain.ParseStatus(status)
	if lat != nil && lng != nil {
		d.LastLocation = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	return d, nil
}
