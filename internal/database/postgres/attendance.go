package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luckymoturi/AttendanceProject/internal/database"
)

// AttendanceRepository provides PostgreSQL-backed access to the append-only
// attendance ledger.
type AttendanceRepository struct {
	pool *Pool
}

// NewAttendanceRepository creates a new PostgreSQL attendance repository.
func NewAttendanceRepository(pool *Pool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// RecordEvent appends an event unless one of the same type already exists for
// that identity on the current UTC day. The attendance_daily_once unique
// index makes the insert atomic, so concurrent requests for the same
// identity cannot both succeed.
func (r *AttendanceRepository) RecordEvent(
	ctx context.Context, userName string, kind database.EventType, lat, lon float64,
) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("invalid event type %q", kind)
	}

	query := `
		INSERT INTO attendance (user_name, event_type, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, userName, string(kind), lat, lon)
	if err != nil {
		return false, fmt.Errorf("record %s for %s: %w", kind, userName, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("record event rows affected: %w", err)
	}
	return affected > 0, nil
}

// HasEventToday reports whether an event of the given type exists for the
// identity on the current UTC day.
func (r *AttendanceRepository) HasEventToday(
	ctx context.Context, userName string, kind database.EventType,
) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM attendance
			WHERE user_name = $1
			  AND event_type = $2
			  AND (timezone('UTC', event_time))::date = (timezone('UTC', NOW()))::date
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userName, string(kind)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s today for %s: %w", kind, userName, err)
	}
	return exists, nil
}

// Events returns the raw event log for an identity, newest first.
func (r *AttendanceRepository) Events(ctx context.Context, userName string) ([]database.AttendanceEvent, error) {
	query := `
		SELECT id, user_name, event_type, event_time, latitude, longitude
		FROM attendance
		WHERE user_name = $1
		ORDER BY event_time DESC
	`

	rows, err := r.pool.Query(ctx, query, userName)
	if err != nil {
		return nil, fmt.Errorf("query attendance events: %w", err)
	}
	defer rows.Close()

	var events []database.AttendanceEvent
	for rows.Next() {
		var e database.AttendanceEvent
		var kind string
		if err := rows.Scan(&e.ID, &e.UserName, &kind, &e.Time, &e.Latitude, &e.Longitude); err != nil {
			return nil, fmt.Errorf("scan attendance event: %w", err)
		}
		e.Type = database.EventType(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance events: %w", err)
	}
	return events, nil
}

// DailyReport groups an identity's events by UTC calendar day and reduces
// each day to its checkin and checkout times, newest day first. Duplicate
// events per day are impossible under the attendance_daily_once index, so
// the MAX aggregation simply picks the single recorded time.
func (r *AttendanceRepository) DailyReport(ctx context.Context, userName string) ([]database.DailyAttendance, error) {
	query := `
		WITH daily_attendance AS (
			SELECT
				(timezone('UTC', event_time))::date AS attendance_date,
				MAX(CASE WHEN event_type = 'checkin' THEN event_time END) AS checkin_time,
				MAX(CASE WHEN event_type = 'checkout' THEN event_time END) AS checkout_time
			FROM attendance
			WHERE user_name = $1
			GROUP BY (timezone('UTC', event_time))::date
		)
		SELECT attendance_date, checkin_time, checkout_time
		FROM daily_attendance
		ORDER BY attendance_date DESC
	`

	rows, err := r.pool.Query(ctx, query, userName)
	if err != nil {
		return nil, fmt.Errorf("query daily report: %w", err)
	}
	defer rows.Close()

	var report []database.DailyAttendance
	for rows.Next() {
		var day database.DailyAttendance
		var checkin, checkout sql.NullTime
		if err := rows.Scan(&day.Date, &checkin, &checkout); err != nil {
			return nil, fmt.Errorf("scan daily report row: %w", err)
		}
		if checkin.Valid {
			day.CheckinTime = &checkin.Time
		}
		if checkout.Valid {
			day.CheckoutTime = &checkout.Time
		}
		report = append(report, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily report: %w", err)
	}
	return report, nil
}
