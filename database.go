// Package statik compiles a declarative project of models, content records
// and views into a tree of rendered files.
package statik

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/statikgen/statik/content"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/logger"
	"github.com/statikgen/statik/schema"
	"github.com/statikgen/statik/script"
)

// Config database config
type Config struct {
	// NamingStrategy tables naming strategy
	NamingStrategy schema.Namer
	// Logger
	Logger logger.Interface
	// NowFunc reference time for partial dates
	NowFunc func() time.Time
	// Markdown options used for Content fields
	Markdown content.Options
	// Context passed to the logger
	Context context.Context
}

func (config *Config) applyDefaults() {
	if config.NamingStrategy == nil {
		config.NamingStrategy = schema.NamingStrategy{}
	}
	if config.Logger == nil {
		config.Logger = logger.Default
	}
	if config.NowFunc == nil {
		config.NowFunc = func() time.Time { return time.Now().UTC() }
	}
	if config.Context == nil {
		config.Context = context.Background()
	}
}

// Table the records of one model, in load order
type Table struct {
	Name    string
	Model   *schema.Model
	records []schema.Record
	index   map[string]schema.Record
	loaded  bool
}

func newTable(model *schema.Model) *Table {
	return &Table{Name: model.Table, Model: model, index: map[string]schema.Record{}}
}

// Insert adds a record, primary keys are unique per table
func (table *Table) Insert(record schema.Record) error {
	pk := record.PK()
	if _, ok := table.index[pk]; ok {
		return errs.New(errs.ErrDuplicateInstance, "primary key already used").WithModel(table.Model.Name).WithPK(pk)
	}
	table.index[pk] = record
	table.records = append(table.records, record)
	return nil
}

// Find looks a record up by primary key
func (table *Table) Find(pk string) (schema.Record, bool) {
	record, ok := table.index[pk]
	return record, ok
}

// Records a copy of the table rows
func (table *Table) Records() []schema.Record {
	return append([]schema.Record(nil), table.records...)
}

// Len number of records
func (table *Table) Len() int {
	return len(table.records)
}

// JoinRow one link of a join table, pks ordered like JoinTable.Models.
// Field names the many to many field that made the link, as Model.field.
type JoinRow struct {
	Field       string
	Left, Right string
}

// JoinTable links the records of two models related by many to many fields
type JoinTable struct {
	ID     schema.JoinTableKey
	Name   string
	Models [2]string
	rows   []JoinRow
	seen   map[JoinRow]bool
}

// JoinField value of JoinRow.Field for field of model
func JoinField(model, field string) string {
	return model + "." + field
}

// Insert links pk of model to other, a pk of the other model, through field
// of model
func (jt *JoinTable) Insert(model, field, pk, other string) {
	row := JoinRow{Field: JoinField(model, field), Left: pk, Right: other}
	if model != jt.Models[0] {
		row.Left, row.Right = other, pk
	}
	if !jt.seen[row] {
		jt.seen[row] = true
		jt.rows = append(jt.rows, row)
	}
}

// Related pks linked to pk through field, a JoinField value, reading rows
// from the left side when fromLeft
func (jt *JoinTable) Related(field, pk string, fromLeft bool) []string {
	var related []string
	for _, row := range jt.rows {
		if row.Field != field {
			continue
		}
		if fromLeft && row.Left == pk {
			related = append(related, row.Right)
		} else if !fromLeft && row.Right == pk {
			related = append(related, row.Left)
		}
	}
	return related
}

// Rows a copy of the links
func (jt *JoinTable) Rows() []JoinRow {
	return append([]JoinRow(nil), jt.rows...)
}

// DB the content database of one build pass
type DB struct {
	*Config
	ID     string
	Models map[string]*schema.Model
	Order  []string

	mu         sync.RWMutex
	tables     map[string]*Table
	joinTables map[schema.JoinTableKey]*JoinTable
	populated  bool
	closed     bool

	evalOnce  sync.Once
	evaluator *script.Evaluator
}

// Open compiles models into an empty database: one table per model, created
// in dependency order, plus the join tables of many to many fields.
func Open(models map[string]*schema.Model, config *Config) (*DB, error) {
	if config == nil {
		config = &Config{}
	}
	config.applyDefaults()

	db := &DB{
		Config:     config,
		ID:         uuid.NewString(),
		Models:     models,
		tables:     map[string]*Table{},
		joinTables: map[schema.JoinTableKey]*JoinTable{},
	}

	begin := time.Now()
	err := db.createTables()
	db.Logger.Trace(db.Context, begin, func() (string, int64) {
		return "compile schema " + db.ID, int64(len(db.tables) + len(db.joinTables))
	}, err)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) createTables() (err error) {
	if db.Order, err = schema.BuildCreationOrder(db.Models); err != nil {
		return err
	}

	for _, name := range db.Order {
		model := db.Models[name]
		db.tables[name] = newTable(model)

		for _, field := range model.Fields {
			if field.Kind != schema.ManyToMany {
				continue
			}
			// the target is either this model or created earlier
			if _, ok := db.tables[field.Target]; !ok {
				return errs.New(errs.ErrInternal, "join table created before %s", field.Target).
					WithModel(name).WithField(field.Name)
			}
			db.JoinTable(name, field.Target)
		}
	}
	return nil
}

// JoinTable returns the join table of two models, creating it on first use.
// Both argument orders give the same table.
func (db *DB) JoinTable(a, b string) *JoinTable {
	id := schema.JoinTableID(a, b)

	db.mu.Lock()
	defer db.mu.Unlock()

	if jt, ok := db.joinTables[id]; ok {
		return jt
	}

	jt := &JoinTable{
		ID:     id,
		Name:   db.NamingStrategy.JoinTableName(a, b),
		Models: [2]string(id),
		seen:   map[JoinRow]bool{},
	}
	db.joinTables[id] = jt
	return jt
}

// JoinTables number of join tables created so far
func (db *DB) JoinTables() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.joinTables)
}

// Table returns the table of model
func (db *DB) Table(model string) (*Table, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil, errs.New(errs.ErrDatabaseClosed, "build %s is over", db.ID)
	}
	table, ok := db.tables[model]
	if !ok {
		return nil, errs.New(errs.ErrInternal, "no table for model").WithModel(model)
	}
	return table, nil
}

// Records all records of model in load order
func (db *DB) Records(model string) ([]schema.Record, error) {
	table, err := db.Table(model)
	if err != nil {
		return nil, err
	}
	return table.Records(), nil
}

// Get looks a record up by model and primary key
func (db *DB) Get(model, pk string) (schema.Record, error) {
	table, err := db.Table(model)
	if err != nil {
		return nil, err
	}
	record, ok := table.Find(pk)
	if !ok {
		return nil, errs.New(errs.ErrDanglingReference, "no such record").WithModel(model).WithPK(pk)
	}
	return record, nil
}

// Close drops every table. Closing twice is fine; any later use fails with
// ErrDatabaseClosed.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true
	db.tables = nil
	db.joinTables = nil
	db.evaluator = nil
	db.Logger.Debug(db.Context, "closed database %s", db.ID)
	return nil
}

func (db *DB) isClosed() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.closed
}
