package statik

import (
	"errors"
	"time"

	"github.com/statikgen/statik/clause"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
	"github.com/statikgen/statik/script"
)

// QueryMode decides which query forms are accepted
type QueryMode int

const (
	// Safe only accepts structured queries
	Safe QueryMode = iota
	// Unsafe also accepts free-form expressions
	Unsafe
)

func (mode QueryMode) String() string {
	if mode == Unsafe {
		return "unsafe"
	}
	return "safe"
}

// Query runs q against the loaded records. A mapping is a structured query
// and returns the matching records; a string is a free-form expression,
// only accepted in Unsafe mode, and returns whatever it evaluates to.
func (db *DB) Query(q interface{}, mode QueryMode, bindings map[string]interface{}) (result interface{}, err error) {
	if db.isClosed() {
		return nil, errs.New(errs.ErrDatabaseClosed, "build %s is over", db.ID)
	}

	begin := time.Now()
	defer func() {
		db.Logger.Trace(db.Context, begin, func() (string, int64) {
			if records, ok := result.([]schema.Record); ok {
				return "query " + mode.String(), int64(len(records))
			}
			return "query " + mode.String(), -1
		}, err)
	}()

	if src, ok := q.(string); ok {
		if mode != Unsafe {
			return nil, errs.New(errs.ErrSafetyViolation, "free-form query %q needs unsafe mode", src)
		}
		evaluator, err := db.scriptEvaluator()
		if err != nil {
			return nil, err
		}
		return evaluator.Eval(src, bindings)
	}

	return db.structured(q, bindings)
}

// QueryRecords runs q and requires a list of records as result
func (db *DB) QueryRecords(q interface{}, mode QueryMode, bindings map[string]interface{}) ([]schema.Record, error) {
	result, err := db.Query(q, mode, bindings)
	if err != nil {
		return nil, err
	}
	records, ok := result.([]schema.Record)
	if !ok {
		return nil, errs.New(errs.ErrQuery, "query must return records, got %T", result)
	}
	return records, nil
}

func (db *DB) structured(q interface{}, bindings map[string]interface{}) ([]schema.Record, error) {
	query, err := clause.Parse(q, bindings)
	if err != nil {
		return nil, err
	}

	table, err := db.Table(query.From)
	if err != nil {
		if errors.Is(err, errs.ErrInternal) {
			return nil, errs.New(errs.ErrQuery, "unknown model %q", query.From)
		}
		return nil, err
	}
	if err := query.Validate(table.Model); err != nil {
		return nil, err
	}
	return query.Apply(table.records, table.Model)
}

// scriptEvaluator converts the tables for expression queries on first use,
// once every model is loaded
func (db *DB) scriptEvaluator() (*script.Evaluator, error) {
	db.mu.RLock()
	populated := db.populated
	db.mu.RUnlock()
	if !populated {
		return nil, errs.New(errs.ErrInternal, "free-form queries need a populated database")
	}

	db.evalOnce.Do(func() {
		db.mu.RLock()
		defer db.mu.RUnlock()
		tables := make(map[string][]schema.Record, len(db.tables))
		for name, table := range db.tables {
			tables[name] = table.Records()
		}
		db.evaluator = script.New(tables)
	})

	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.evaluator == nil {
		return nil, errs.New(errs.ErrDatabaseClosed, "build %s is over", db.ID)
	}
	return db.evaluator, nil
}
