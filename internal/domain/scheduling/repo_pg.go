package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicops/clinicops/internal/platform/apperr"
	"github.com/clinicops/clinicops/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Appointment Repository ===========

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_id, purposes, other_purpose, has_insurance,
	appointment_date, appointment_time, duration_minutes, schedule_change_count,
	status, cancellation_reason, vitals_id, notes, phone, email,
	version_id, created_at, updated_at`

func (r *appointmentRepoPG) scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.Purposes, &a.OtherPurpose, &a.HasInsurance,
		&a.AppointmentDate, &a.AppointmentTime, &a.DurationMinutes, &a.ScheduleChangeCount,
		&a.Status, &a.CancellationReason, &a.VitalsID, &a.Notes, &a.Phone, &a.Email,
		&a.VersionID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "appointment not found")
	}
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.VersionID = 1
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, purposes, other_purpose, has_insurance,
			appointment_date, appointment_time, duration_minutes, schedule_change_count,
			status, notes, phone, email, version_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,0,$9,$10,$11,$12,1)`,
		a.ID, a.PatientID, a.Purposes, a.OtherPurpose, a.HasInsurance,
		a.AppointmentDate, a.AppointmentTime, a.DurationMinutes,
		a.Status, a.Notes, a.Phone, a.Email)
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

// Update writes the mutable fields under a version compare-and-swap. A write
// against a stale version fails with Conflict so the caller re-reads instead
// of silently overwriting a concurrent change.
func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE appointment
		SET appointment_date=$3, appointment_time=$4, duration_minutes=$5,
			schedule_change_count=$6, status=$7, cancellation_reason=$8,
			vitals_id=$9, notes=$10, phone=$11, email=$12,
			version_id = version_id + 1, updated_at = NOW()
		WHERE id = $1 AND version_id = $2
		RETURNING version_id, updated_at`,
		a.ID, a.VersionID,
		a.AppointmentDate, a.AppointmentTime, a.DurationMinutes,
		a.ScheduleChangeCount, a.Status, a.CancellationReason,
		a.VitalsID, a.Notes, a.Phone, a.Email)

	err := row.Scan(&a.VersionID, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing row from a lost version race.
		var exists bool
		if chkErr := r.conn(ctx).QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM appointment WHERE id = $1)`, a.ID).Scan(&exists); chkErr != nil {
			return chkErr
		}
		if !exists {
			return apperr.New(apperr.KindNotFound, "appointment not found")
		}
		return apperr.New(apperr.KindConflict, "appointment was modified concurrently")
	}
	return err
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1
		ORDER BY appointment_date DESC, appointment_time DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListByDate(ctx context.Context, date time.Time, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointment WHERE appointment_date = $1`, date).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE appointment_date = $1
		ORDER BY appointment_time ASC LIMIT $2 OFFSET $3`,
		date, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collect(rows)
	return items, total, err
}

func (r *appointmentRepoPG) ListActiveByProviderOnDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+prefixCols(apptCols, "a.")+`
		FROM appointment a
		JOIN provider_assignment pa ON pa.appointment_id = a.id
		WHERE pa.provider_id = $1
		  AND a.appointment_date = $2
		  AND a.status NOT IN ($3, $4)
		ORDER BY a.appointment_time ASC`,
		providerID, date, StatusCancelled, StatusNoShow)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *appointmentRepoPG) collect(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// =========== Assignment Repository ===========

type assignmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssignmentRepoPG(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepoPG{pool: pool}
}

func (r *assignmentRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *assignmentRepoPG) Add(ctx context.Context, pa *ProviderAssignment) error {
	pa.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO provider_assignment (id, appointment_id, provider_id, provider_role, assigned_by_id)
		VALUES ($1,$2,$3,$4,$5)`,
		pa.ID, pa.AppointmentID, pa.ProviderID, pa.ProviderRole, pa.AssignedByID)
	if isUniqueViolation(err) {
		// Concurrent double-assign of the same provider; already linked.
		return nil
	}
	return err
}

func (r *assignmentRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*ProviderAssignment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, appointment_id, provider_id, provider_role, assigned_by_id, created_at
		FROM provider_assignment WHERE appointment_id = $1 ORDER BY created_at ASC`,
		appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ProviderAssignment
	for rows.Next() {
		var pa ProviderAssignment
		if err := rows.Scan(&pa.ID, &pa.AppointmentID, &pa.ProviderID, &pa.ProviderRole,
			&pa.AssignedByID, &pa.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &pa)
	}
	return items, rows.Err()
}

func (r *assignmentRepoPG) Exists(ctx context.Context, appointmentID, providerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM provider_assignment WHERE appointment_id = $1 AND provider_id = $2)`,
		appointmentID, providerID).Scan(&exists)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// prefixCols qualifies a comma-separated column list with a table alias.
func prefixCols(cols, prefix string) string {
	out := make([]byte, 0, len(cols)+len(cols)/4)
	out = append(out, prefix...)
	for i := 0; i < len(cols); i++ {
		out = append(out, cols[i])
		if cols[i] == ',' {
			for i+1 < len(cols) && (cols[i+1] == ' ' || cols[i+1] == '\n' || cols[i+1] == '\t') {
				i++
			}
			out = append(out, ' ')
			out = append(out, prefix...)
		}
	}
	return string(out)
}
