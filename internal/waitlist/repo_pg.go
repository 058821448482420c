package waitlist

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, req Request) error {
	const query = `
INSERT INTO waitlist_requests (id, name, email, company, annual_revenue, role, contract_volume, billing_challenge, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.ExecContext(ctx, query,
		req.ID,
		req.Name,
		req.Email,
		req.Company,
		req.AnnualRevenue,
		req.Role,
		req.ContractVolume,
		req.BillingChallenge,
		req.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *PGRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT count(*) FROM waitlist_requests`
	var n int
	if err := r.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
