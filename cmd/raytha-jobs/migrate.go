package main

import (
	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/pkg/database"
)

const (
	docMigrate = `Apply (or with --down, revert) the database schema.`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase

	Down bool `long:"down" description:"Revert all migrations"`
}

func (c *optsMigrate) Execute(args []string) error {
	log, err := c.logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := c.optsDatabase.options()
	if c.Down {
		log.Info("reverting migrations", zap.String("driver", c.DatabaseDriver))
		return database.MigrateDown(opts)
	}
	log.Info("applying migrations", zap.String("driver", c.DatabaseDriver))
	return database.Migrate(opts)
}
