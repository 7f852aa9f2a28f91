package main

import (
	"context"
	"log"
	"os"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/course"
	cachesvc "github.com/hajerbook/backend/services/cache"
	logsvc "github.com/hajerbook/backend/services/logger"
	notifysvc "github.com/hajerbook/backend/services/notify"
	"github.com/hajerbook/backend/storage"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// migrations are run on demand
	store, err := storage.Open(context.Background(), conf, false)
	errAndDie(err)

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	courseSvc := course.NewService(
		store.Courses,
		cachesvc.NewMemoryCache(conf),
		notifysvc.NewNotifier(appLogger, nil, conf),
		appLogger,
		conf,
	)

	// start CLI
	cli := commandLine{
		accRepo:   store.Accounts,
		courseSvc: courseSvc,
		out:       os.Stdout,
	}
	if store.SQL != nil {
		cli.db = store.SQL.DB
	}
	err = cli.run(os.Args)
	_ = store.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
