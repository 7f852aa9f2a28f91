package mongorepos

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
)

type accountDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	Phone        string    `bson:"phone"`
	IsActive     bool      `bson:"is_active"`
	Roles        []string  `bson:"roles"`
	PasswordHash []byte    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	LastLogin    time.Time `bson:"last_login,omitempty"`
}

func toDoc(acc account.Account) accountDoc {
	roles := acc.Roles
	if roles == nil {
		roles = []string{}
	}
	return accountDoc{
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
		LastLogin:    acc.LastLogin.UTC(),
	}
}

func (d accountDoc) account() account.Account {
	acc := account.Account{
		ID:           d.ID,
		Name:         d.Name,
		Username:     d.Username,
		Email:        d.Email,
		Phone:        d.Phone,
		Roles:        d.Roles,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	acc.SetActive(d.IsActive)
	if !d.LastLogin.IsZero() {
		acc.LastLogin = d.LastLogin.UTC()
	}
	return acc
}

type accountRepository struct {
	coll *mongo.Collection
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *mongo.Database) account.Repository {
	return &accountRepository{coll: db.Collection(accountsCollection)}
}

func (repo *accountRepository) CheckUniqueness(ctx context.Context, username, email string, excluded []account.Account) error {
	or := bson.A{bson.M{"username": username}}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	filter := bson.M{"$or": or}
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, a := range excluded {
			ids = append(ids, a.ID)
		}
		filter["_id"] = bson.M{"$nin": ids}
	}

	n, err := repo.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return errors.Wrap(err, "checking account uniqueness")
	}
	if n > 0 {
		return account.ErrAccountExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	acc.ID = uuid.New().String()
	if _, err := repo.coll.InsertOne(ctx, toDoc(acc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.Account{}, account.ErrAccountExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return acc, nil
}

func (repo *accountRepository) QueryAccounts(ctx context.Context, filter *account.QueryFilter, ordering []core.DBOrdering) ([]account.Account, error) {
	query := bson.M{}
	if filter != nil {
		// accounts with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			rx := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
			query["$or"] = bson.A{bson.M{"name": rx}, bson.M{"username": rx}, bson.M{"email": rx}}
		}
		// accounts with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			prefixes := make(bson.A, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				prefixes = append(prefixes, bson.M{"roles": bson.M{"$regex": "^" + regexp.QuoteMeta(role)}})
			}
			query["$and"] = bson.A{bson.M{"$or": prefixes}}
		}
		if filter.IsActive != nil {
			query["is_active"] = *filter.IsActive
		}
	}

	cur, err := repo.coll.Find(ctx, query, options.Find().SetSort(sortDoc(ordering)))
	if err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}
	var docs []accountDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding accounts")
	}
	accs := make([]account.Account, 0, len(docs))
	for _, d := range docs {
		accs = append(accs, d.account())
	}
	return accs, nil
}

// sortDoc only keeps known fields, newest first by default.
func sortDoc(ordering []core.DBOrdering) bson.D {
	sort := make(bson.D, 0, len(ordering))
	for _, ord := range ordering {
		if !account.OrderingFields[ord.Field] {
			continue
		}
		dir := -1
		if ord.Ascending {
			dir = 1
		}
		sort = append(sort, bson.E{Key: ord.Field, Value: dir})
	}
	if len(sort) == 0 {
		sort = append(sort, bson.E{Key: "created_at", Value: -1})
	}
	return sort
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	var query bson.M
	if filter.ID != "" {
		query = bson.M{"_id": filter.ID}
	} else {
		values := make(bson.A, 0, len(filter.UsernameOrEmail))
		for _, v := range filter.UsernameOrEmail {
			if v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return account.Account{}, account.ErrNotFound
		}
		query = bson.M{"$or": bson.A{
			bson.M{"username": bson.M{"$in": values}},
			bson.M{"email": bson.M{"$in": values}},
		}}
	}

	var doc accountDoc
	if err := repo.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, errors.Wrap(err, "finding account")
	}
	return doc.account(), nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": acc.ID}, toDoc(acc))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.Account{}, account.ErrAccountExists
		}
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if res.MatchedCount == 0 {
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
	if _, err := repo.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return errors.Wrap(err, "deleting accounts")
	}
	return nil
}
