package statik

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/statikgen/statik/content"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/schema"
	"github.com/statikgen/statik/utils"
)

// CollectionName stem of the file holding a whole collection of records
const CollectionName = "_all"

// entry raw values of one record before coercion
type entry struct {
	pk      string
	file    string
	vars    map[string]interface{}
	body    template.HTML
	hasBody bool
}

// LoadModelRecords loads the records of model from sourcePath, a single
// file or a directory holding one file per record and optionally an
// `_all.yml` collection. Models the records point to must be loaded first.
func (db *DB) LoadModelRecords(model string, sourcePath string) (records []schema.Record, err error) {
	table, err := db.Table(model)
	if err != nil {
		return nil, err
	}

	begin := time.Now()
	defer func() {
		db.Logger.Trace(db.Context, begin, func() (string, int64) {
			return "load " + model, int64(len(records))
		}, err)
	}()

	for _, dep := range table.Model.Dependencies() {
		target, err := db.Table(dep)
		if err != nil {
			return nil, err
		}
		if !target.loaded {
			return nil, errs.New(errs.ErrInternal, "%s must be loaded before %s", dep, model).WithModel(model)
		}
	}

	entries, err := db.collect(sourcePath)
	if err != nil {
		return nil, errs.InFile(err, errs.ErrInvalidCollection, sourcePath)
	}

	for _, e := range entries {
		record, err := db.buildRecord(table, e)
		if err != nil {
			return nil, errs.InFile(err, errs.ErrDataCoercion, e.file)
		}
		if err := table.Insert(record); err != nil {
			return nil, errs.InFile(err, errs.ErrDuplicateInstance, e.file)
		}
		records = append(records, record)
	}

	// references to the model itself can only be resolved once every
	// record of this source is in the table
	for i, record := range records {
		if err := db.resolveSelfReferences(table, record, entries[i]); err != nil {
			return nil, errs.InFile(err, errs.ErrDanglingReference, entries[i].file)
		}
	}

	table.loaded = true
	return records, nil
}

// collect reads the raw entries of a source path in a stable order
func (db *DB) collect(sourcePath string) ([]entry, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, errs.Wrap(errs.ErrMissingProjectFolder, err, "cannot read records").WithFile(sourcePath)
	}

	if !info.IsDir() {
		if !content.IsSupported(sourcePath) {
			return nil, errs.New(errs.ErrUnsupportedSource, "unsupported extension %q", filepath.Ext(sourcePath)).WithFile(sourcePath)
		}
		if utils.ExtractFilename(sourcePath) == CollectionName {
			return db.collectAll(sourcePath)
		}
		e, err := db.collectFile(sourcePath)
		if err != nil {
			return nil, err
		}
		return []entry{e}, nil
	}

	files, err := os.ReadDir(sourcePath)
	if err != nil {
		return nil, errs.Wrap(errs.ErrMissingProjectFolder, err, "cannot list records").WithFile(sourcePath)
	}

	var (
		entries     []entry
		collections []string
		singles     []string
	)
	for _, file := range files {
		name := file.Name()
		path := filepath.Join(sourcePath, name)
		switch {
		case file.IsDir(), strings.HasPrefix(name, "."):
		case !content.IsSupported(name):
			db.Logger.Debug(db.Context, "skipping %s: unsupported extension", path)
		case utils.ExtractFilename(name) == CollectionName:
			collections = append(collections, path)
		default:
			singles = append(singles, path)
		}
	}
	sort.Strings(collections)
	sort.Strings(singles)

	for _, path := range collections {
		all, err := db.collectAll(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, all...)
	}
	for _, path := range singles {
		e, err := db.collectFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (db *DB) collectFile(path string) (entry, error) {
	source, err := content.Load(path, db.Markdown)
	if err != nil {
		return entry{}, err
	}

	e := entry{
		pk:      source.Name,
		file:    path,
		vars:    source.Vars,
		body:    source.Body,
		hasBody: source.HasBody,
	}
	if pk, ok := e.vars[schema.PrimaryKey]; ok && pk != nil {
		e.pk = fmt.Sprint(pk)
	}
	return e, nil
}

func (db *DB) collectAll(path string) ([]entry, error) {
	data, err := content.LoadData(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	items, ok := data.([]interface{})
	if !ok {
		return nil, errs.New(errs.ErrInvalidCollection, "a collection must be a list, got %T", data).WithFile(path)
	}

	entries := make([]entry, 0, len(items))
	for i, item := range items {
		vars, ok := item.(map[string]interface{})
		if !ok {
			return nil, errs.New(errs.ErrInvalidCollection, "entry %d is not a mapping", i).WithFile(path)
		}
		pk, ok := vars[schema.PrimaryKey]
		if !ok || pk == nil || fmt.Sprint(pk) == "" {
			return nil, errs.New(errs.ErrInvalidCollection, "entry %d has no pk", i).WithFile(path)
		}
		entries = append(entries, entry{pk: fmt.Sprint(pk), file: path, vars: vars})
	}
	return entries, nil
}

func (db *DB) buildRecord(table *Table, e entry) (schema.Record, error) {
	model := table.Model
	record := schema.NewRecord(model.Name, e.pk)
	fail := func(field *schema.Field, err error) error {
		if ee, ok := err.(*errs.Error); ok {
			return ee.WithModel(model.Name).WithPK(e.pk).WithField(field.Name)
		}
		return errs.Wrap(errs.ErrDataCoercion, err, "cannot read value").
			WithModel(model.Name).WithPK(e.pk).WithField(field.Name)
	}

	for key := range e.vars {
		if key != schema.PrimaryKey && model.LookUpField(strings.ReplaceAll(key, "-", "_")) == nil {
			db.Logger.Warn(db.Context, "%s(%s): ignoring undeclared field %q in %s", model.Name, e.pk, key, e.file)
		}
	}

	for _, field := range model.Fields {
		raw, ok := e.vars[field.Name]
		if !ok {
			raw = e.vars[strings.ReplaceAll(field.Name, "_", "-")]
		}

		switch field.Kind {
		case schema.Content:
			switch {
			case e.hasBody:
				record[field.Name] = e.body
			case raw != nil:
				text, err := Coerce(schema.String, raw, db.NowFunc())
				if err != nil {
					return nil, fail(field, err)
				}
				html, err := content.RenderMarkdown(text.(string), db.Markdown)
				if err != nil {
					return nil, fail(field, err)
				}
				record[field.Name] = html
			default:
				record[field.Name] = nil
			}

		case schema.ForeignKey:
			record[field.Name] = nil
			record[field.KeyName()] = nil
			if raw == nil {
				continue
			}
			pk, err := referenceKey(raw)
			if err != nil {
				return nil, fail(field, err)
			}
			record[field.KeyName()] = pk
			if field.IsSelfReference() {
				continue
			}
			target, err := db.Get(field.Target, pk)
			if err != nil {
				return nil, fail(field, err)
			}
			record[field.Name] = target

		case schema.ManyToMany:
			pks, err := db.referenceKeys(model, e.pk, field, raw)
			if err != nil {
				return nil, fail(field, err)
			}
			if field.IsSelfReference() {
				record[field.Name] = pks
				continue
			}
			targets, err := db.resolveMany(model, e.pk, field, pks)
			if err != nil {
				return nil, fail(field, err)
			}
			record[field.Name] = targets

		default:
			value, err := Coerce(field.Kind, raw, db.NowFunc())
			if err != nil {
				return nil, fail(field, errs.Wrap(errs.ErrDataCoercion, err, "expected %s, got %v", field.Kind, raw))
			}
			record[field.Name] = value
		}
	}

	if e.hasBody && model.ContentField == nil {
		db.Logger.Debug(db.Context, "%s(%s): %s has a body but the model has no Content field", model.Name, e.pk, e.file)
	}
	return record, nil
}

func referenceKey(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case schema.Record:
		return v.PK(), nil
	case map[string]interface{}, []interface{}:
		return "", errs.New(errs.ErrDataCoercion, "a reference must be a primary key, got %T", raw)
	}
	return fmt.Sprint(raw), nil
}

// referenceKeys validates the raw value of a many to many field: it must be
// a list, duplicates are dropped and non string keys are stringified
func (db *DB) referenceKeys(model *schema.Model, pk string, field *schema.Field, raw interface{}) ([]string, error) {
	if raw == nil {
		return []string{}, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errs.New(errs.ErrInvalidFieldType, "%s expects a list of %s keys, got %T", field.Name, field.Target, raw)
	}

	var (
		pks  = make([]string, 0, len(items))
		seen = make(map[string]bool, len(items))
	)
	for _, item := range items {
		key, isString := item.(string)
		if !isString {
			if item == nil {
				continue
			}
			key = fmt.Sprint(item)
			db.Logger.Warn(db.Context, "%s(%s).%s: key %v is not a string, using %q", model.Name, pk, field.Name, item, key)
		}
		if seen[key] {
			db.Logger.Warn(db.Context, "%s(%s).%s: dropping duplicate key %q", model.Name, pk, field.Name, key)
			continue
		}
		seen[key] = true
		pks = append(pks, key)
	}
	return pks, nil
}

// resolveMany looks targets up with a structured query against the target
// table, creates missing targets of field-less models and links the join table
func (db *DB) resolveMany(model *schema.Model, pk string, field *schema.Field, pks []string) ([]schema.Record, error) {
	targets := make([]schema.Record, 0, len(pks))
	if len(pks) == 0 {
		return targets, nil
	}

	in := make([]interface{}, len(pks))
	for i, key := range pks {
		in[i] = key
	}
	found, err := db.QueryRecords(map[string]interface{}{
		"from":  field.Target,
		"where": map[string]interface{}{schema.PrimaryKey: map[string]interface{}{"$in": in}},
	}, Safe, nil)
	if err != nil {
		return nil, err
	}

	byPK := make(map[string]schema.Record, len(found))
	for _, record := range found {
		byPK[record.PK()] = record
	}

	table, err := db.Table(field.Target)
	if err != nil {
		return nil, err
	}
	jt := db.JoinTable(model.Name, field.Target)

	for _, key := range pks {
		target, ok := byPK[key]
		if !ok {
			if !table.Model.IsPkOnly() {
				return nil, errs.New(errs.ErrDanglingReference, "no %s with pk %q", field.Target, key)
			}
			target = schema.NewRecord(field.Target, key)
			if err := table.Insert(target); err != nil {
				return nil, err
			}
			db.Logger.Info(db.Context, "created %s(%s) referenced by %s(%s)", field.Target, key, model.Name, pk)
		}
		targets = append(targets, target)
		jt.Insert(model.Name, field.Name, pk, key)
	}
	return targets, nil
}

func (db *DB) resolveSelfReferences(table *Table, record schema.Record, e entry) error {
	for _, field := range table.Model.Fields {
		if !field.IsSelfReference() {
			continue
		}

		switch field.Kind {
		case schema.ForeignKey:
			pk, _ := record[field.KeyName()].(string)
			if record[field.KeyName()] == nil {
				continue
			}
			target, ok := table.Find(pk)
			if !ok {
				return errs.New(errs.ErrDanglingReference, "no %s with pk %q", field.Target, pk).
					WithModel(table.Model.Name).WithPK(record.PK()).WithField(field.Name)
			}
			record[field.Name] = target
		case schema.ManyToMany:
			pks, _ := record[field.Name].([]string)
			targets, err := db.resolveMany(table.Model, record.PK(), field, pks)
			if err != nil {
				if ee, ok := err.(*errs.Error); ok {
					return ee.WithModel(table.Model.Name).WithPK(record.PK()).WithField(field.Name)
				}
				return err
			}
			record[field.Name] = targets
		}
	}
	return nil
}

// Populate loads every model from `<dataPath>/<Model>` in creation order,
// then fills the back-populated collections. A missing directory means the
// model has no records.
func (db *DB) Populate(dataPath string) (err error) {
	begin := time.Now()
	var total int64
	defer func() {
		db.Logger.Trace(db.Context, begin, func() (string, int64) {
			return "populate " + db.ID, total
		}, err)
	}()

	for _, name := range db.Order {
		source := filepath.Join(dataPath, name)
		if _, statErr := os.Stat(source); os.IsNotExist(statErr) {
			table, err := db.Table(name)
			if err != nil {
				return err
			}
			table.loaded = true
			continue
		}

		records, err := db.LoadModelRecords(name, source)
		if err != nil {
			return err
		}
		total += int64(len(records))
	}

	if err = db.fillBackReferences(); err != nil {
		return err
	}

	db.mu.Lock()
	db.populated = true
	db.mu.Unlock()
	return nil
}

func (db *DB) fillBackReferences() error {
	for _, name := range db.Order {
		table, err := db.Table(name)
		if err != nil {
			return err
		}

		for _, rel := range table.Model.AdditionalRelationships {
			source, err := db.Table(rel.SourceModel.Name)
			if err != nil {
				return err
			}

			switch rel.Type {
			case schema.HasMany:
				byTarget := map[string][]schema.Record{}
				for _, record := range source.records {
					if pk, ok := record[rel.SourceField.KeyName()].(string); ok {
						byTarget[pk] = append(byTarget[pk], record)
					}
				}
				for _, record := range table.records {
					record[rel.Name] = append([]schema.Record{}, byTarget[record.PK()]...)
				}

			case schema.Many2Many:
				jt := db.JoinTable(rel.SourceModel.Name, name)
				fromLeft := name == jt.Models[0] && rel.SourceModel.Name != name
				field := JoinField(rel.SourceModel.Name, rel.SourceField.Name)
				for _, record := range table.records {
					related := []schema.Record{}
					for _, pk := range jt.Related(field, record.PK(), fromLeft) {
						if linked, ok := source.Find(pk); ok {
							related = append(related, linked)
						}
					}
					record[rel.Name] = related
				}
			}
		}
	}
	return nil
}
