package clinical

import (
	"context"
	"encoding/json"
	"errors"

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

// =========== Vitals Repository ===========

type vitalsRepoPG struct{ pool *pgxpool.Pool }

func NewVitalsRepoPG(pool *pgxpool.Pool) VitalsRepository { return &vitalsRepoPG{pool: pool} }

func (r *vitalsRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const vitalsCols = `id, appointment_id, temperature_c, bp_systolic, bp_diastolic,
	heart_rate, respiratory_rate, oxygen_saturation, weight_kg, height_cm, bmi,
	notes, created_by_id, created_at`

func (r *vitalsRepoPG) scanVitals(row pgx.Row) (*Vitals, error) {
	var v Vitals
	err := row.Scan(&v.ID, &v.AppointmentID, &v.TemperatureC, &v.BPSystolic, &v.BPDiastolic,
		&v.HeartRate, &v.RespiratoryRate, &v.OxygenSaturation, &v.WeightKg, &v.HeightCm, &v.BMI,
		&v.Notes, &v.CreatedByID, &v.CreatedAt)
	return &v, err
}

func (r *vitalsRepoPG) Create(ctx context.Context, v *Vitals) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vitals (id, appointment_id, temperature_c, bp_systolic, bp_diastolic,
			heart_rate, respiratory_rate, oxygen_saturation, weight_kg, height_cm, bmi,
			notes, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		v.ID, v.AppointmentID, v.TemperatureC, v.BPSystolic, v.BPDiastolic,
		v.HeartRate, v.RespiratoryRate, v.OxygenSaturation, v.WeightKg, v.HeightCm, v.BMI,
		v.Notes, v.CreatedByID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.New(apperr.KindAlreadyExists, "vitals already recorded for this appointment")
	}
	return err
}

func (r *vitalsRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Vitals, error) {
	v, err := r.scanVitals(r.conn(ctx).QueryRow(ctx,
		`SELECT `+vitalsCols+` FROM vitals WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "vitals not found")
	}
	return v, err
}

func (r *vitalsRepoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Vitals, error) {
	v, err := r.scanVitals(r.conn(ctx).QueryRow(ctx,
		`SELECT `+vitalsCols+` FROM vitals WHERE appointment_id = $1`, appointmentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// =========== SoapNote Repository ===========

type soapNoteRepoPG struct{ pool *pgxpool.Pool }

func NewSoapNoteRepoPG(pool *pgxpool.Pool) SoapNoteRepository { return &soapNoteRepoPG{pool: pool} }

func (r *soapNoteRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const noteCols = `id, appointment_id, subjective, objective, assessment, plan,
	created_by_id, amended_by_id, created_at, updated_at`

// Sections live in jsonb columns; marshalling happens here so the service
// only sees typed structs.
func (r *soapNoteRepoPG) scanNote(row pgx.Row) (*SoapNote, error) {
	var n SoapNote
	var subj, obj, assess, plan []byte
	err := row.Scan(&n.ID, &n.AppointmentID, &subj, &obj, &assess, &plan,
		&n.CreatedByID, &n.AmendedByID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(subj, &n.Subjective); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(obj, &n.Objective); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assess, &n.Assessment); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(plan, &n.Plan); err != nil {
		return nil, err
	}
	return &n, nil
}

func marshalSections(n *SoapNote) (subj, obj, assess, plan []byte, err error) {
	if subj, err = json.Marshal(n.Subjective); err != nil {
		return
	}
	if obj, err = json.Marshal(n.Objective); err != nil {
		return
	}
	if assess, err = json.Marshal(n.Assessment); err != nil {
		return
	}
	plan, err = json.Marshal(n.Plan)
	return
}

func (r *soapNoteRepoPG) Create(ctx context.Context, n *SoapNote) error {
	n.ID = uuid.New()
	subj, obj, assess, plan, err := marshalSections(n)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO soap_note (id, appointment_id, subjective, objective, assessment, plan, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.AppointmentID, subj, obj, assess, plan, n.CreatedByID)
	return err
}

func (r *soapNoteRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SoapNote, error) {
	n, err := r.scanNote(r.conn(ctx).QueryRow(ctx,
		`SELECT `+noteCols+` FROM soap_note WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.New(apperr.KindNotFound, "soap note not found")
	}
	return n, err
}

func (r *soapNoteRepoPG) Update(ctx context.Context, n *SoapNote) error {
	subj, obj, assess, plan, err := marshalSections(n)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE soap_note
		SET subjective=$2, objective=$3, assessment=$4, plan=$5, amended_by_id=$6, updated_at=NOW()
		WHERE id = $1`,
		n.ID, subj, obj, assess, plan, n.AmendedByID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "soap note not found")
	}
	return nil
}

func (r *soapNoteRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM soap_note WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "soap note not found")
	}
	return nil
}

func (r *soapNoteRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID, limit, offset int) ([]*SoapNote, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM soap_note WHERE appointment_id = $1`, appointmentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+noteCols+` FROM soap_note
		WHERE appointment_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		appointmentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*SoapNote
	for rows.Next() {
		n, err := r.scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}
