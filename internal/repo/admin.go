package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog/log"
)

const adminTable = "admin_auth"

// AdminUsername is the single account the credential table holds.
const AdminUsername = "admin"

type AdminRow struct {
	ID           int64  `db:"id" goqu:"skipinsert"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Salt         string `db:"salt"`
	CreatedAt    Date   `db:"created_at"`
	UpdatedAt    Date   `db:"updated_at"`
}

type AdminRepo struct {
	db *goqu.Database
}

func NewAdminRepo(db *sql.DB) *AdminRepo {
	return &AdminRepo{db: goqu.New("sqlite3", db)}
}

// Get returns the admin row, or nil when it has not been created yet.
func (r *AdminRepo) Get(ctx context.Context) (*AdminRow, error) {
	var row AdminRow
	found, err := r.db.From(adminTable).
		Where(goqu.C("username").Eq(AdminUsername)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch admin credential: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &row, nil
}

// CreateIfAbsent inserts the admin row unless one exists and reports whether
// it inserted.
func (r *AdminRepo) CreateIfAbsent(ctx context.Context, hash, salt string) (bool, error) {
	now := Now()
	res, err := r.db.Insert(adminTable).
		Rows(goqu.Record{
			"username":      AdminUsername,
			"password_hash": hash,
			"salt":          salt,
			"created_at":    now,
			"updated_at":    now,
		}).
		OnConflict(goqu.DoNothing()).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create admin credential: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		log.Info().Str("username", AdminUsername).Msg("admin credential created")
	}
	return n > 0, nil
}

// SetPassword overwrites hash and salt in one statement.
func (r *AdminRepo) SetPassword(ctx context.Context, hash, salt string) (bool, error) {
	res, err := r.db.Update(adminTable).
		Set(goqu.Record{
			"password_hash": hash,
			"salt":          salt,
			"updated_at":    Now(),
		}).
		Where(goqu.C("username").Eq(AdminUsername)).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to update admin credential: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
