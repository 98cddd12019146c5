package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/internal/core"
	"github.com/RaythaHQ/raytha-sub006/pkg/database"
	"github.com/RaythaHQ/raytha-sub006/pkg/script"
)

const (
	docWorker = `Run worker loops, the function governor & any configured event sources.

Jobs are claimed from the database; several worker processes can share one database.`
)

type optsWorker struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsFunctions
	optsEvents
}

func (c *optsWorker) Execute(args []string) error {
	log, err := c.logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Open(c.optsDatabase.options())
	if err != nil {
		return err
	}
	defer db.Close()

	caps, closeCaps, err := capabilities(&c.optsFunctions, log)
	if err != nil {
		return err
	}
	defer closeCaps()

	opts, err := serviceOptions(&c.optsQueue, &c.optsFunctions, &c.optsEvents)
	if err != nil {
		return err
	}

	svc, err := core.NewService(db, script.NewGoja(caps, log), opts, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker starting", zap.String("driver", c.DatabaseDriver))
	return svc.Run(ctx)
}
