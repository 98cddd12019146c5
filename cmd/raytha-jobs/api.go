package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RaythaHQ/raytha-sub006/internal/core"
	"github.com/RaythaHQ/raytha-sub006/pkg/api"
	"github.com/RaythaHQ/raytha-sub006/pkg/api/http/server"
	"github.com/RaythaHQ/raytha-sub006/pkg/database"
	"github.com/RaythaHQ/raytha-sub006/pkg/script"
)

const (
	docAPI = `Run the HTTP API server.

This serves job status, enqueue & event dispatch. It runs no workers; run the worker
command for that.`
)

type optsAPI struct {
	optsGeneral
	optsDatabase
	optsQueue
	optsFunctions

	Addr string `long:"addr" env:"ADDR" description:"Address to bind to" default:"localhost:8100"`

	ReadTimeoutMS  int `long:"read-timeout-ms" env:"READ_TIMEOUT_MS" description:"HTTP read timeout" default:"15000"`
	WriteTimeoutMS int `long:"write-timeout-ms" env:"WRITE_TIMEOUT_MS" description:"HTTP write timeout" default:"15000"`
}

func (c *optsAPI) Execute(args []string) error {
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

	opts, err := serviceOptions(&c.optsQueue, &c.optsFunctions, nil)
	if err != nil {
		return err
	}

	// the interpreter is never reached; functions only run on workers
	svc, err := core.NewService(db, script.NewGoja(nil, log), opts, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.NewServer(&api.Options{
		Addr:         c.Addr,
		Debug:        c.Debug,
		ReadTimeout:  time.Duration(c.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout: time.Duration(c.WriteTimeoutMS) * time.Millisecond,
	}, log)
	return s.ServeForever(ctx, svc)
}
