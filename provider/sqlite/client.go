package sqlite

import (
	_ "modernc.org/sqlite"

	"github.com/oddbit-project/batchcore/db"
	"github.com/oddbit-project/batchcore/utils"
)

const (
	driverName = "sqlite"

	ErrNilConfig = utils.Error("Config is nil")
	ErrEmptyDSN  = utils.Error("Empty DSN")
)

// ClientConfig is the DSN for a modernc.org/sqlite connection, e.g.
// "file:data.db?cache=shared" or ":memory:".
type ClientConfig struct {
	DSN string `json:"dsn"`
}

func (c ClientConfig) Validate() error {
	if len(c.DSN) == 0 {
		return ErrEmptyDSN
	}
	return nil
}

// NewClient returns a db.SqlClient wired to the pure-Go modernc.org/sqlite
// driver, matching blueprint/provider/pgsql.NewClient's shape.
func NewClient(config *ClientConfig) (*db.SqlClient, error) {
	if config == nil {
		return nil, ErrNilConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return db.NewSqlClient(config.DSN, driverName, nil), nil
}
