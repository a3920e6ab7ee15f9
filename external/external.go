// Package external imports records from an SQL database into data files
// before a build, one YAML file per row.
package external

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/logger"
	"github.com/statikgen/statik/schema"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	SQLite     = "sqlite"
	PostgreSQL = "postgresql"
)

// Config import config
type Config struct {
	Type string
	DSN  string
	// Override replaces data files that already exist
	Override bool
	// Models limits the import, every model when empty
	Models []string
	Logger logger.Interface
}

// Importer reads model tables through gorm
type Importer struct {
	*Config
	dialect Dialect
	db      *gorm.DB
}

// Open connects to the database named by config
func Open(config *Config) (*Importer, error) {
	if config.Logger == nil {
		config.Logger = logger.Default
	}

	dialect := NewDialect(config.Type)
	if dialect == nil {
		return nil, errs.New(errs.ErrProjectConfiguration, "%q is not a supported external database", config.Type)
	}

	db, err := gorm.Open(dialect.Dialector(config.DSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, errs.Wrap(errs.ErrExternalDatabase, err, "cannot connect to %s database", config.Type)
	}
	return &Importer{Config: config, dialect: dialect, db: db}, nil
}

// DB the underlying connection
func (im *Importer) DB() *gorm.DB {
	return im.db
}

// Close closes the connection
func (im *Importer) Close() error {
	sqlDB, err := im.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Import writes `<dataPath>/<Model>/<pk>.yml` for every row of every model
// table and returns how many files were written. Existing files are kept
// unless Override is set.
func (im *Importer) Import(ctx context.Context, models map[string]*schema.Model, dataPath string) (written int, err error) {
	begin := time.Now()
	defer func() {
		im.Logger.Trace(ctx, begin, func() (string, int64) {
			return "import " + im.Type, int64(written)
		}, err)
	}()

	names := im.Models
	if len(names) == 0 {
		for name := range models {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		model, ok := models[name]
		if !ok {
			return written, errs.New(errs.ErrProjectConfiguration, "external-database names unknown model %q", name)
		}
		n, err := im.importModel(ctx, model, filepath.Join(dataPath, name))
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (im *Importer) importModel(ctx context.Context, model *schema.Model, dir string) (int, error) {
	columns := []string{schema.PrimaryKey}
	for _, field := range model.Fields {
		switch field.Kind {
		case schema.ManyToMany:
			im.Logger.Warn(ctx, "import %s: skipping many to many field %s", model.Name, field.Name)
		case schema.ForeignKey:
			columns = append(columns, field.KeyName())
		default:
			columns = append(columns, field.Name)
		}
	}

	var rows []map[string]interface{}
	if err := im.db.WithContext(ctx).Table(model.Table).Select(columns).Order(schema.PrimaryKey).Find(&rows).Error; err != nil {
		return 0, errs.Wrap(errs.ErrExternalDatabase, im.dialect.Translate(err), "cannot read table %s", model.Table).WithModel(model.Name)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errs.Wrap(errs.ErrExternalDatabase, err, "cannot create data directory").WithFile(dir)
	}

	written := 0
	for _, row := range rows {
		pk := fmt.Sprint(plain(row[schema.PrimaryKey]))
		if row[schema.PrimaryKey] == nil || pk == "" {
			return written, errs.New(errs.ErrExternalDatabase, "row without pk in %s", model.Table).WithModel(model.Name)
		}
		if !fileSafe(pk) {
			return written, errs.New(errs.ErrExternalDatabase, "pk cannot name a file").WithModel(model.Name).WithPK(pk)
		}

		path := filepath.Join(dir, pk+".yml")
		if _, err := os.Stat(path); err == nil && !im.Override {
			im.Logger.Debug(ctx, "import %s: keeping %s", model.Name, path)
			continue
		}

		data, err := yaml.Marshal(record(model, row))
		if err != nil {
			return written, errs.Wrap(errs.ErrExternalDatabase, err, "cannot encode row").WithModel(model.Name).WithPK(pk)
		}
		if err := atomic.WriteFile(path, strings.NewReader(string(data))); err != nil {
			return written, errs.Wrap(errs.ErrExternalDatabase, err, "cannot write").WithFile(path)
		}
		written++
	}
	im.Logger.Info(ctx, "imported %d %s record(s) into %s", written, model.Name, dir)
	return written, nil
}

// record maps a row onto the keys the record loader reads
func record(model *schema.Model, row map[string]interface{}) map[string]interface{} {
	result := map[string]interface{}{}
	for _, field := range model.Fields {
		switch field.Kind {
		case schema.ManyToMany:
		case schema.ForeignKey:
			if value := plain(row[field.KeyName()]); value != nil {
				result[field.Name] = fmt.Sprint(value)
			}
		default:
			if value := plain(row[field.Name]); value != nil {
				result[field.Name] = value
			}
		}
	}
	return result
}

// fileSafe reports whether pk names a file directly inside its model folder
func fileSafe(pk string) bool {
	return pk != "." && pk != ".." && !strings.ContainsAny(pk, `/\`+"\x00")
}

func plain(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
