package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Postgres-backed Repository.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const userCols = `id, wallet_address, role, first_name, last_name, email,
	specialization, license_number, hospital_affiliation, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.WalletAddress, &u.Role, &u.FirstName, &u.LastName, &u.Email,
		&u.Specialization, &u.LicenseNumber, &u.HospitalAffiliation, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, wallet_address, role, first_name, last_name, email,
			specialization, license_number, hospital_affiliation)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.WalletAddress, u.Role, u.FirstName, u.LastName, u.Email,
		u.Specialization, u.LicenseNumber, u.HospitalAffiliation)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrWalletInUse
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *repoPG) GetByWallet(ctx context.Context, wallet string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE wallet_address = $1`, wallet)
	return scanUser(row)
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, email = $4,
			specialization = $5, license_number = $6, hospital_affiliation = $7,
			updated_at = NOW()
		WHERE id = $1`,
		u.ID, u.FirstName, u.LastName, u.Email,
		u.Specialization, u.LicenseNumber, u.HospitalAffiliation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userCols+` FROM users
		WHERE role = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, role, limit, offset)
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
