package database

import (
	"fmt"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
)

// Open returns the database named by opts.Driver.
func Open(opts *Options) (Database, error) {
	opts.SetDefaults()
	switch opts.Driver {
	case DriverPostgres:
		return NewPostgres(opts)
	case DriverMySQL:
		return NewMySQL(opts)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w driver %s", errors.ErrNotSupported, opts.Driver)
	}
}
