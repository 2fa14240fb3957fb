package sqlstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect captures what differs between the supported SQL engines.
type Dialect struct {
	Name       string
	DriverName string

	migrationsDDL string
	// resyncIDs realigns id sequences after rows were inserted with
	// explicit ids. Empty when the engine does it on its own.
	resyncIDs         string
	isUniqueViolation func(error) bool
}

var Postgres = Dialect{
	Name:       "postgres",
	DriverName: "postgres",
	migrationsDDL: `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	resyncIDs: `SELECT setval(pg_get_serial_sequence('bank_accounts', 'id'), GREATEST((SELECT MAX(id) FROM bank_accounts), 1))`,
	isUniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == "23505"
	},
}

// SQLite matches constraint failures on the message so the package still
// builds without cgo, where the driver's typed errors do not exist.
var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite3",
	migrationsDDL: `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	isUniqueViolation: func(err error) bool {
		return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
	}
}
