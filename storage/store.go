// Package storage opens the repositories of the configured database engine.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
	"github.com/hajerbook/backend/core/course"
	"github.com/hajerbook/backend/storage/database"
	dummydb "github.com/hajerbook/backend/storage/database/dummy"
	mongorepos "github.com/hajerbook/backend/storage/database/mongo"
	pgrepos "github.com/hajerbook/backend/storage/database/postgres"
)

const (
	EnginePostgres = "postgres"
	EngineMongo    = "mongo"
	EngineMemory   = "memory"
)

// Store holds the repositories of one database engine.
type Store struct {
	Engine   string
	Accounts account.Repository
	Courses  course.Repository
	SQL      *sqlx.DB // postgres only
	close    func() error
}

// Open connects to conf.Database.Engine. Postgres databases are created when
// missing and, if migrate is set, brought up to the latest migration.
func Open(ctx context.Context, conf *core.Config, migrate bool) (*Store, error) {
	switch conf.Database.Engine {
	case EnginePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err = database.Migrate(db.DB); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Store{
			Engine:   EnginePostgres,
			Accounts: pgrepos.NewAccountRepository(db),
			Courses:  pgrepos.NewCourseRepository(db),
			SQL:      db,
			close:    db.Close,
		}, nil

	case EngineMongo:
		db, err := mongorepos.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		return &Store{
			Engine:   EngineMongo,
			Accounts: mongorepos.NewAccountRepository(db),
			Courses:  mongorepos.NewCourseRepository(db),
			close:    func() error { return mongorepos.Close(context.Background(), db) },
		}, nil

	case EngineMemory:
		return NewMemoryStore(dummydb.Open()), nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

// NewMemoryStore wraps an in-memory database.
func NewMemoryStore(db *dummydb.DB) *Store {
	return &Store{
		Engine:   EngineMemory,
		Accounts: dummydb.NewAccountRepository(db),
		Courses:  dummydb.NewCourseRepository(db),
		close:    func() error { return nil },
	}
}

func (s *Store) Close() error {
	return errors.Wrapf(s.close(), "closing %s store", s.Engine)
}
