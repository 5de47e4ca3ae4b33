package repository

import (
	"context"
	"database/sql"
	"errors"

	"fruitsight/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var (
	ErrDuplicateAccount = errors.New("account already exists")
	ErrAccountNotFound  = errors.New("account not found")
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	SetLoginState(ctx context.Context, email string, loggedIn bool) error
}

type accountRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewAccountRepository(db *sqlx.DB, log *logrus.Logger) AccountRepository {
	return &accountRepository{db: db, log: log}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (id, name, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.db.QueryRowxContext(ctx, query, account.ID, account.Name, account.Email, account.PasswordHash).Scan(&account.CreatedAt)
	if err != nil {
		// The UNIQUE constraint on email is the authoritative duplicate
		// check; two racing signups cannot both pass it.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateAccount
		}
		return err
	}
	return nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	query := `SELECT id, name, email, password_hash, logged_in, created_at FROM accounts WHERE email = $1`
	err := r.db.GetContext(ctx, &account, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) SetLoginState(ctx context.Context, email string, loggedIn bool) error {
	query := `UPDATE accounts SET logged_in = $1 WHERE email = $2`
	res, err := r.db.ExecContext(ctx, query, loggedIn, email)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAccountNotFound
	}
	return nil
}
