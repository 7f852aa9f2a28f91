package pgrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
)

const accountColumns = "id, name, username, email, phone, is_active, roles, password_hash, created_at, updated_at, last_login"

type accountRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	Phone        string         `db:"phone"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func toRow(acc account.Account) accountRow {
	roles := acc.Roles
	if roles == nil {
		roles = []string{}
	}
	return accountRow{
		ID:           acc.ID,
		Name:         acc.Name,
		Username:     acc.Username,
		Email:        acc.Email,
		Phone:        acc.Phone,
		IsActive:     acc.Active(),
		Roles:        roles,
		PasswordHash: acc.PasswordHash,
		CreatedAt:    acc.CreatedAt.UTC(),
		UpdatedAt:    acc.UpdatedAt.UTC(),
		LastLogin:    sql.NullTime{Time: acc.LastLogin.UTC(), Valid: !acc.LastLogin.IsZero()},
	}
}

func (r accountRow) account() account.Account {
	acc := account.Account{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		Phone:        r.Phone,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
	acc.SetActive(r.IsActive)
	if r.LastLogin.Valid {
		acc.LastLogin = r.LastLogin.Time.UTC()
	}
	return acc
}

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to account.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *accountRepository) CheckUniqueness(ctx context.Context, username, email string, excluded []account.Account) error {
	q := "SELECT EXISTS (SELECT 1 FROM accounts WHERE (username = $1 OR (email <> '' AND email = $2))"
	args := []interface{}{username, email}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, a := range excluded {
			ids = append(ids, a.ID)
		}
		q += " AND NOT (id::text = ANY($3))"
		args = append(args, pq.Array(ids))
	}
	q += ")"

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking account uniqueness")
	}
	if exists {
		return account.ErrAccountExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	acc.ID = uuid.New().String()
	q := `INSERT INTO accounts (` + accountColumns + `)
		VALUES (:id, :name, :username, :email, :phone, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := repo.db.NamedExecContext(ctx, q, toRow(acc)); err != nil {
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return acc, nil
}

func (repo *accountRepository) QueryAccounts(ctx context.Context, filter *account.QueryFilter, ordering []core.DBOrdering) ([]account.Account, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		// accounts with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			p := arg("%" + filter.Search + "%")
			where = append(where, fmt.Sprintf("(name ILIKE %s OR username ILIKE %s OR email ILIKE %s)", p, p, p))
		}
		// accounts with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			patterns := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				patterns = append(patterns, role+"%")
			}
			where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM UNNEST(roles) account_role WHERE account_role ILIKE ANY(%s))", arg(pq.Array(patterns))))
		}
		if filter.IsActive != nil {
			where = append(where, "is_active = "+arg(*filter.IsActive))
		}
	}

	q := "SELECT " + accountColumns + " FROM accounts"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderBy(ordering)

	var rows []accountRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}
	accs := make([]account.Account, 0, len(rows))
	for _, r := range rows {
		accs = append(accs, r.account())
	}
	return accs, nil
}

// orderBy only keeps known fields, newest first by default.
func orderBy(ordering []core.DBOrdering) string {
	terms := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if account.OrderingFields[ord.Field] {
			terms = append(terms, ord.String())
		}
	}
	if len(terms) == 0 {
		terms = append(terms, core.DBOrdering{Field: "created_at"}.String())
	}
	return strings.Join(terms, ", ")
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	var (
		row accountRow
		err error
	)
	q := "SELECT " + accountColumns + " FROM accounts WHERE "
	if filter.ID != "" {
		if _, err = uuid.Parse(filter.ID); err != nil {
			return account.Account{}, account.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &row, q+"id = $1", filter.ID)
	} else {
		values := make([]string, 0, len(filter.UsernameOrEmail))
		for _, v := range filter.UsernameOrEmail {
			if v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return account.Account{}, account.ErrNotFound
		}
		err = repo.db.GetContext(ctx, &row, q+"username = ANY($1) OR email = ANY($1) LIMIT 1", pq.Array(values))
	}
	if err != nil {
		return account.Account{}, trapNoRowsErr(err, "finding account")
	}
	return row.account(), nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	q := `UPDATE accounts SET
		name = :name, username = :username, email = :email, phone = :phone, is_active = :is_active,
		roles = :roles, password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toRow(acc))
	if err != nil {
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return acc, nil
}

func (repo *accountRepository) UpdateOrCreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	if acc.ID == "" {
		existing, err := repo.GetAccount(ctx, account.GetFilter{UsernameOrEmail: []string{acc.Username, acc.Email}})
		switch {
		case err == nil:
			acc.ID = existing.ID
			acc.CreatedAt = existing.CreatedAt
		case err != account.ErrNotFound:
			return account.Account{}, err
		}
	}
	if acc.ID == "" {
		return repo.CreateAccount(ctx, acc)
	}
	return repo.UpdateAccount(ctx, acc)
}

func (repo *accountRepository) DeleteAccountsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM accounts WHERE id::text = ANY($1)", pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting accounts")
	}
	return nil
}
