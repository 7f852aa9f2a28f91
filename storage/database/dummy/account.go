package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
)

type accountRepository struct {
	db *accountTable
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db.account}
}

func (repo *accountRepository) query() []account.Account {
	accs := make([]account.Account, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		accs = append(accs, *a)
	}
	return accs
}

func (repo *accountRepository) CheckUniqueness(_ context.Context, username, email string, excluded []account.Account) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	isExcluded := func(acc account.Account) bool {
		for _, e := range excluded {
			if e.ID == acc.ID {
				return true
			}
		}
		return false
	}
	for _, acc := range repo.query() {
		if isExcluded(acc) {
			continue
		}
		if (username != "" && acc.Username == username) || (email != "" && acc.Email == email) {
			return account.ErrAccountExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	acc.ID = uuid.New().String()
	repo.db.table[acc.ID] = &acc
	return acc, nil
}

func (repo *accountRepository) QueryAccounts(_ context.Context, filter *account.QueryFilter, ordering []core.DBOrdering) ([]account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	accs := repo.query()
	if filter != nil {
		accs = filterAccounts(accs, filter)
	}
	sortAccounts(accs, ordering)
	return accs, nil
}

func filterAccounts(accs []account.Account, filter *account.QueryFilter) []account.Account {
	filtered := make([]account.Account, 0, len(accs))
	search := strings.ToLower(filter.Search)
	for _, a := range accs {
		// accounts with search keyword matching any Name, Username or Email
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Username), search) &&
			!strings.Contains(strings.ToLower(a.Email), search) &&
			!strings.Contains(strings.ToLower(a.Name), search) {
			continue
		}
		// accounts with any of the specified roles
		if len(filter.Roles) > 0 {
			var match bool
			for _, r := range filter.Roles {
				if a.RoleStartsWith(r) {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.IsActive != nil && a.Active() != *filter.IsActive {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered
}

// sortAccounts sorts by the given orderings, newest first by default.
func sortAccounts(accs []account.Account, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
	}
	less := func(a, b account.Account, field string) (bool, bool) {
		switch field {
		case "name":
			return a.Name < b.Name, a.Name == b.Name
		case "username":
			return a.Username < b.Username, a.Username == b.Username
		case "email":
			return a.Email < b.Email, a.Email == b.Email
		case "is_active":
			return !a.Active() && b.Active(), a.Active() == b.Active()
		case "last_login":
			return a.LastLogin.Before(b.LastLogin), a.LastLogin.Equal(b.LastLogin)
		default: // created_at
			return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
	}
	sort.SliceStable(accs, func(i, j int) bool {
		for _, ord := range ordering {
			lt, eq := less(accs[i], accs[j], ord.Field)
			if eq {
				continue
			}
			if ord.Ascending {
				return lt
			}
			return !lt
		}
		return false
	})
}

func (repo *accountRepository) GetAccount(_ context.Context, filter account.GetFilter) (account.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.get(filter)
}

func (repo *accountRepository) get(filter account.GetFilter) (account.Account, error) {
	if filter.ID != "" {
		if acc, ok := repo.db.table[filter.ID]; ok {
			return *acc, nil
		}
		return account.Account{}, account.ErrNotFound
	}
	for _, acc := range repo.db.table {
		for _, v := range filter.UsernameOrEmail {
			if v != "" && (acc.Username == v || acc.Email == v) {
				return *acc, nil
			}
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[acc.ID]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	repo.db.table[acc.ID] = &acc
	return acc, nil
}

func (repo *accountRepository) UpdateOrCreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	repo.db.Lock()
	if acc.ID == "" {
		if existing, err := repo.get(account.GetFilter{UsernameOrEmail: []string{acc.Username, acc.Email}}); err == nil {
			acc.ID = existing.ID
			acc.CreatedAt = existing.CreatedAt
		}
	}
	_, exists := repo.db.table[acc.ID]
	repo.db.Unlock()

	if acc.ID != "" && exists {
		return repo.UpdateAccount(ctx, acc)
	}
	return repo.CreateAccount(ctx, acc)
}

func (repo *accountRepository) DeleteAccountsByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
