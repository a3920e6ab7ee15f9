package external

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	// ErrMissingTable the table of a model does not exist
	ErrMissingTable = errors.New("missing table")
	// ErrMissingColumn a field of a model has no column
	ErrMissingColumn = errors.New("missing column")
)

// Dialect opens one kind of database and explains its errors
type Dialect interface {
	Dialector(dsn string) gorm.Dialector
	Translate(err error) error
}

// NewDialect returns the dialect of a database type, nil when unsupported
func NewDialect(dbType string) Dialect {
	switch strings.ToLower(dbType) {
	case SQLite, "sqlite3":
		return sqliteDialect{}
	case PostgreSQL, "postgres":
		return postgresDialect{}
	}
	return nil
}

type sqliteDialect struct{}

func (sqliteDialect) Dialector(dsn string) gorm.Dialector {
	return sqlite.Dialector{DriverName: "sqlite", DSN: dsn}
}

// Translate matches the messages of the pure Go sqlite driver, its errors
// only expose a numeric code shared by every SQL failure
func (sqliteDialect) Translate(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("%w: %v", ErrMissingTable, err)
	case strings.Contains(msg, "no such column"):
		return fmt.Errorf("%w: %v", ErrMissingColumn, err)
	}
	return err
}

var postgresErrCodes = map[string]string{
	"undefinedTable":  "42P01",
	"undefinedColumn": "42703",
}

type postgresDialect struct{}

type postgresErr struct {
	Code     string `json:"Code"`
	Severity string `json:"Severity"`
	Message  string `json:"Message"`
}

func (postgresDialect) Dialector(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

func (postgresDialect) Translate(err error) error {
	parsedErr, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		return err
	}

	var pgErr postgresErr
	if unmarshalErr := json.Unmarshal(parsedErr, &pgErr); unmarshalErr != nil {
		return err
	}

	switch pgErr.Code {
	case postgresErrCodes["undefinedTable"]:
		return fmt.Errorf("%w: %s", ErrMissingTable, pgErr.Message)
	case postgresErrCodes["undefinedColumn"]:
		return fmt.Errorf("%w: %s", ErrMissingColumn, pgErr.Message)
	}
	return err
}
