package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swasthya/swasthya/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) CreateOutsider(ctx context.Context, o *Outsider) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO outsiders (id, name, phone, address) VALUES ($1,$2,$3,$4)`,
		o.ID, o.Name, o.Phone, o.Address)
	return err
}

func (r *repoPG) GetOutsider(ctx context.Context, id uuid.UUID) (*Outsider, error) {
	var o Outsider
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, phone, address, created_at FROM outsiders WHERE id = $1`, id).
		Scan(&o.ID, &o.Name, &o.Phone, &o.Address, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

const recordCols = `sr.id, sr.patient_type, sr.patient_id, sr.service_types, sr.service_details,
	sr.visit_date, sr.doctor_name, sr.hospital_name, sr.findings, sr.is_normal,
	sr.severity, sr.vitals, sr.created_at, sr.updated_at`

// patientJoins resolves the tagged patient reference to a display name and
// phone across the three patient tables.
const patientJoins = `
	LEFT JOIN users u ON sr.patient_type = 'employee' AND u.id = sr.patient_id
	LEFT JOIN relatives rel ON sr.patient_type = 'relative' AND rel.id = sr.patient_id
	LEFT JOIN outsiders o ON sr.patient_type = 'outsider' AND o.id = sr.patient_id`

const patientName = `COALESCE(TRIM(u.first_name || ' ' || u.last_name), rel.name, o.name, '')`
const patientPhone = `COALESCE(u.phone_number, rel.phone, o.phone, '')`

func scanRecord(row pgx.Row) (*ServiceRecord, error) {
	var rec ServiceRecord
	err := row.Scan(&rec.ID, &rec.PatientType, &rec.PatientID,
		&rec.ServiceTypes, &rec.ServiceDetails, &rec.VisitDate,
		&rec.DoctorName, &rec.HospitalName, &rec.Findings, &rec.IsNormal,
		&rec.Severity, &rec.Vitals, &rec.CreatedAt, &rec.UpdatedAt)
	return &rec, err
}

func (r *repoPG) CreateRecord(ctx context.Context, rec *ServiceRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service_records (id, patient_type, patient_id, service_types,
			service_details, visit_date, doctor_name, hospital_name, findings,
			is_normal, severity, vitals)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rec.ID, rec.PatientType, rec.PatientID, rec.ServiceTypes,
		rec.ServiceDetails, rec.VisitDate, rec.DoctorName, rec.HospitalName,
		rec.Findings, rec.IsNormal, rec.Severity, rec.Vitals)
	return err
}

func (r *repoPG) GetRecord(ctx context.Context, id uuid.UUID) (*ServiceRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM service_records sr WHERE sr.id = $1`, id))
}

func (r *repoPG) UpdateRecord(ctx context.Context, rec *ServiceRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE service_records SET service_types=$2, service_details=$3, visit_date=$4,
			doctor_name=$5, hospital_name=$6, findings=$7, is_normal=$8,
			severity=$9, vitals=$10, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.ServiceTypes, rec.ServiceDetails, rec.VisitDate,
		rec.DoctorName, rec.HospitalName, rec.Findings, rec.IsNormal,
		rec.Severity, rec.Vitals)
	return err
}

func (r *repoPG) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM service_records WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientType string, patientID uuid.UUID) ([]*ServiceRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM service_records sr
		 WHERE sr.patient_type = $1 AND sr.patient_id = $2
		 ORDER BY sr.visit_date DESC`, patientType, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ServiceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

// buildWhere appends predicates for the optional filters and returns the
// WHERE clause with its positional args.
func buildWhere(q Query) (string, []interface{}) {
	where := ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if q.Search != "" {
		where += fmt.Sprintf(` AND (%s ILIKE $%d OR %s ILIKE $%d
			OR sr.doctor_name ILIKE $%d OR sr.hospital_name ILIKE $%d
			OR sr.service_types::text ILIKE $%d OR sr.findings ILIKE $%d)`,
			patientName, idx, patientPhone, idx, idx, idx, idx, idx)
		args = append(args, "%"+q.Search+"%")
		idx++
	}
	if q.PatientType != "" {
		where += fmt.Sprintf(` AND sr.patient_type = $%d`, idx)
		args = append(args, q.PatientType)
		idx++
	}
	if q.ServiceType != "" {
		where += fmt.Sprintf(` AND sr.service_types::text ILIKE $%d`, idx)
		args = append(args, "%"+q.ServiceType+"%")
		idx++
	}
	return where, args
}

func (r *repoPG) Find(ctx context.Context, q Query, limit, offset int) ([]*ServiceRecord, int, error) {
	where, args := buildWhere(q)
	from := ` FROM service_records sr` + patientJoins

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + recordCols + `, ` + patientName + `, ` + patientPhone +
		from + where +
		fmt.Sprintf(` ORDER BY sr.visit_date DESC, sr.created_at DESC LIMIT $%d OFFSET $%d`,
			len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ServiceRecord
	for rows.Next() {
		var rec ServiceRecord
		err := rows.Scan(&rec.ID, &rec.PatientType, &rec.PatientID,
			&rec.ServiceTypes, &rec.ServiceDetails, &rec.VisitDate,
			&rec.DoctorName, &rec.HospitalName, &rec.Findings, &rec.IsNormal,
			&rec.Severity, &rec.Vitals, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.PatientName, &rec.PatientPhone)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, &rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Stats(ctx context.Context, q Query) (*Statistics, error) {
	where, args := buildWhere(q)
	var st Statistics
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE sr.patient_type = 'employee'),
			COUNT(*) FILTER (WHERE sr.patient_type = 'relative'),
			COUNT(*) FILTER (WHERE sr.patient_type = 'outsider'),
			COUNT(DISTINCT (sr.patient_type, sr.patient_id))
		FROM service_records sr`+patientJoins+where, args...).
		Scan(&st.TotalServices, &st.EmployeeCount, &st.RelativeCount,
			&st.OutsiderCount, &st.DistinctPatients)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *repoPG) PatientExists(ctx context.Context, patientType string, id uuid.UUID) (bool, error) {
	var table string
	switch patientType {
	case PatientEmployee:
		table = "users"
	case PatientRelative:
		table = "relatives"
	case PatientOutsider:
		table = "outsiders"
	default:
		return false, errInvalidPatientType
	}
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
