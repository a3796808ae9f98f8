package camp

import (
	"context"
	"fmt"
	"time"

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

const campCols = `id, location, address, date, start_time, end_time, beneficiary_limit,
	status, created_by, description, services, created_at, updated_at`

func scanCamp(row pgx.Row) (*Camp, error) {
	var c Camp
	err := row.Scan(&c.ID, &c.Location, &c.Address, &c.Date, &c.StartTime, &c.EndTime,
		&c.BeneficiaryLimit, &c.Status, &c.CreatedBy, &c.Description, &c.Services,
		&c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Camp) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO camps (id, location, address, date, start_time, end_time,
			beneficiary_limit, status, created_by, description, services)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.Location, c.Address, c.Date, c.StartTime, c.EndTime,
		c.BeneficiaryLimit, c.Status, c.CreatedBy, c.Description, c.Services)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Camp, error) {
	c, err := scanCamp(r.conn(ctx).QueryRow(ctx,
		`SELECT `+campCols+` FROM camps WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	c.ConductedBy, err = r.Doctors(ctx, id)
	return c, err
}

func (r *repoPG) Update(ctx context.Context, c *Camp) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE camps SET location=$2, address=$3, date=$4, start_time=$5, end_time=$6,
			beneficiary_limit=$7, status=$8, description=$9, services=$10, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Location, c.Address, c.Date, c.StartTime, c.EndTime,
		c.BeneficiaryLimit, c.Status, c.Description, c.Services)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM camps WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, filter Filter, limit, offset int) ([]*Camp, int, error) {
	query := `SELECT ` + campCols + ` FROM camps WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM camps WHERE 1=1`
	var args []interface{}
	idx := 1

	// Filter.Now carries the caller's location; its civil date is the
	// "today" boundary.
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	switch filter.When {
	case "upcoming":
		cond := fmt.Sprintf(` AND date >= $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, today)
		idx++
	case "past":
		cond := fmt.Sprintf(` AND date < $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, today)
		idx++
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		cond := fmt.Sprintf(` AND date >= $%d AND date < $%d`, idx, idx+1)
		query += cond
		countQuery += cond
		args = append(args, start, end)
		idx += 2
	}
	if filter.Status != "" {
		cond := fmt.Sprintf(` AND status = $%d`, idx)
		query += cond
		countQuery += cond
		args = append(args, filter.Status)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY date, start_time LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Camp
	for rows.Next() {
		c, err := scanCamp(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, c := range items {
		if c.ConductedBy, err = r.Doctors(ctx, c.ID); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (r *repoPG) SlotTaken(ctx context.Context, location string, date time.Time, startTime string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM camps
			WHERE location = $1 AND date = $2 AND start_time = $3 AND id <> $4)`,
		location, date, startTime, excludeID).Scan(&exists)
	return exists, err
}

func (r *repoPG) SetDoctors(ctx context.Context, campID uuid.UUID, doctorIDs []uuid.UUID) error {
	conn := r.conn(ctx)
	if _, err := conn.Exec(ctx, `DELETE FROM camp_doctors WHERE camp_id = $1`, campID); err != nil {
		return err
	}
	for _, doctorID := range doctorIDs {
		if _, err := conn.Exec(ctx,
			`INSERT INTO camp_doctors (camp_id, doctor_id) VALUES ($1,$2)`,
			campID, doctorID); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) Doctors(ctx context.Context, campID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT doctor_id FROM camp_doctors WHERE camp_id = $1`, campID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
