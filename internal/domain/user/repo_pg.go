package user

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

const userCols = `id, first_name, last_name, email, phone_number, password_hash, role,
	date_of_birth, gender, blood_group, address, family_members, department,
	has_abha_id, has_ayushman_card, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber,
		&u.PasswordHash, &u.Role, &u.DateOfBirth, &u.Gender, &u.BloodGroup,
		&u.Address, &u.FamilyMembers, &u.Department,
		&u.HasAbhaID, &u.HasAyushmanCard, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, first_name, last_name, email, phone_number, password_hash, role,
			date_of_birth, gender, blood_group, address, family_members, department,
			has_abha_id, has_ayushman_card)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PhoneNumber, u.PasswordHash, u.Role,
		u.DateOfBirth, u.Gender, u.BloodGroup, u.Address, u.FamilyMembers, u.Department,
		u.HasAbhaID, u.HasAyushmanCard)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByEmailAndRole(ctx context.Context, email, role string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1 AND role = $2`, email, role))
}

func (r *repoPG) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE phone_number = $1`, phone))
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET first_name=$2, last_name=$3, email=$4, phone_number=$5,
			password_hash=$6, date_of_birth=$7, gender=$8, blood_group=$9,
			address=$10, family_members=$11, department=$12,
			has_abha_id=$13, has_ayushman_card=$14, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PhoneNumber,
		u.PasswordHash, u.DateOfBirth, u.Gender, u.BloodGroup,
		u.Address, u.FamilyMembers, u.Department,
		u.HasAbhaID, u.HasAyushmanCard)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return r.Search(ctx, nil, limit, offset)
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	query := `SELECT ` + userCols + ` FROM users WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM users WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["role"]; ok {
		query += fmt.Sprintf(` AND role = $%d`, idx)
		countQuery += fmt.Sprintf(` AND role = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["department"]; ok {
		query += fmt.Sprintf(` AND department = $%d`, idx)
		countQuery += fmt.Sprintf(` AND department = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["search"]; ok {
		cond := fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR phone_number ILIKE $%d)`, idx, idx, idx)
		query += cond
		countQuery += cond
		args = append(args, "%"+p+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *repoPG) EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeID).Scan(&exists)
	return exists, err
}

const relativeCols = `id, user_id, linked_user_id, name, relationship,
	date_of_birth, gender, blood_group, phone, created_at, updated_at`

func scanRelative(row pgx.Row) (*Relative, error) {
	var rel Relative
	err := row.Scan(&rel.ID, &rel.UserID, &rel.LinkedUserID, &rel.Name, &rel.Relationship,
		&rel.DateOfBirth, &rel.Gender, &rel.BloodGroup, &rel.Phone,
		&rel.CreatedAt, &rel.UpdatedAt)
	return &rel, err
}

func (r *repoPG) AddRelative(ctx context.Context, rel *Relative) error {
	rel.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO relatives (id, user_id, linked_user_id, name, relationship,
			date_of_birth, gender, blood_group, phone)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rel.ID, rel.UserID, rel.LinkedUserID, rel.Name, rel.Relationship,
		rel.DateOfBirth, rel.Gender, rel.BloodGroup, rel.Phone)
	return err
}

func (r *repoPG) GetRelative(ctx context.Context, id uuid.UUID) (*Relative, error) {
	return scanRelative(r.conn(ctx).QueryRow(ctx,
		`SELECT `+relativeCols+` FROM relatives WHERE id = $1`, id))
}

func (r *repoPG) ListRelatives(ctx context.Context, userID uuid.UUID) ([]*Relative, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+relativeCols+` FROM relatives WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Relative
	for rows.Next() {
		rel, err := scanRelative(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rel)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateRelative(ctx context.Context, rel *Relative) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE relatives SET name=$2, relationship=$3, date_of_birth=$4,
			gender=$5, blood_group=$6, phone=$7, updated_at=NOW()
		WHERE id = $1`,
		rel.ID, rel.Name, rel.Relationship, rel.DateOfBirth,
		rel.Gender, rel.BloodGroup, rel.Phone)
	return err
}

func (r *repoPG) DeleteRelative(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM relatives WHERE id = $1`, id)
	return err
}

func (r *repoPG) RelativeLinkExists(ctx context.Context, userID, linkedUserID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM relatives WHERE user_id = $1 AND linked_user_id = $2)`,
		userID, linkedUserID).Scan(&exists)
	return exists, err
}
