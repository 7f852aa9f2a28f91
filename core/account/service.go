package account

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core"
)

var (
	// errors
	ErrNotFound      = errors.New("account not found")
	ErrAccountExists = errors.New("an account with this username or email already exists")
	ErrInvalidOrder  = errors.New("invalid ordering field")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, username, email string, excluded []Account) error
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		// QueryAccounts applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Name, Username or Email.
		QueryAccounts(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Account, error)
		GetAccount(ctx context.Context, filter GetFilter) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
		UpdateOrCreateAccount(ctx context.Context, acc Account) (Account, error)
		DeleteAccountsByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, uname, email string, exclAccs ...Account) error
		Create(ctx context.Context, na NewAccount) (Account, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Account, error)
		GetByID(ctx context.Context, id string) (Account, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (Account, error)
		Update(ctx context.Context, id string, ua UpdateAccount) (Account, error)
		SetLastLogin(ctx context.Context, acc Account) (Account, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, uname, email string, exclAccs ...Account) error {
	if err := svc.repo.CheckUniqueness(ctx, uname, email, exclAccs); err != nil {
		if err == ErrAccountExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, na NewAccount) (Account, error) {
	now := time.Now().UTC()
	acc := Account{
		Name:      na.Name,
		Username:  na.Username,
		Email:     na.Email,
		Phone:     na.Phone,
		Roles:     na.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if acc.Roles == nil {
		acc.Roles = []string{RoleStudent}
	}
	acc.SetActive(true)
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateAccount(ctx, acc)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Account, error) {
	for _, ord := range ordering {
		if !OrderingFields[ord.Field] {
			return nil, core.NewValidationError(ErrInvalidOrder, core.FieldError{Field: "ordering", Error: ErrInvalidOrder.Error()})
		}
	}
	return svc.repo.QueryAccounts(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{ID: id})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (Account, error) {
	return svc.repo.GetAccount(ctx, GetFilter{UsernameOrEmail: []string{core.CleanString(uname, true /* lower */)}})
}

func (svc *service) Update(ctx context.Context, id string, ua UpdateAccount) (Account, error) {
	acc, err := svc.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	acc.Name = ua.Name
	acc.Username = ua.Username
	acc.Email = ua.Email
	acc.Phone = ua.Phone
	if ua.Roles != nil {
		acc.Roles = ua.Roles
	}
	if ua.IsActive != nil {
		acc.SetActive(*ua.IsActive)
	}
	if ua.Password != "" {
		if err := acc.SetPassword(ua.Password); err != nil {
			return Account{}, errors.Wrap(err, "setting password")
		}
	}
	acc.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

func (svc *service) SetLastLogin(ctx context.Context, acc Account) (Account, error) {
	acc.LastLogin = time.Now().UTC()
	return svc.repo.UpdateAccount(ctx, acc)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAccountsByID(ctx, ids...)
}
