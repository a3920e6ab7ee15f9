// Package view expands declarative views into output trees: once per view,
// once per record of a driving query, or once per page of its results.
package view

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cast"
	"github.com/statikgen/statik/content"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/utils"
)

// Declaration keys
const (
	KeyPath     = "path"
	KeyTemplate = "template"
	KeyForEach  = "for-each"
	KeyPaginate = "paginate"
	KeyContext  = "context"
	KeyStatic   = "static"
	KeyDynamic  = "dynamic"
	KeyPerPage  = "per-page"
	KeyOffset   = "offset"
	KeyStart    = "start-page"
)

// Pagination splits the results of a complex view into pages
type Pagination struct {
	PerPage   int
	Offset    int
	StartPage int
}

// Context context sources of a view, applied in this order
type Context struct {
	Initial map[string]interface{}
	Static  map[string]interface{}
	Dynamic map[string]interface{}
	ForEach map[string]interface{}
}

// View a parsed view declaration
type View struct {
	Name     string
	Path     string
	Template string
	Context  Context

	// set for complex views
	Complex  bool
	Variable string
	Query    interface{}
	Paginate *Pagination
}

// ParseOptions defaults applied while parsing
type ParseOptions struct {
	Initial map[string]interface{}
}

// Parse builds a view from its decoded declaration
func Parse(name string, decl map[string]interface{}, opts ParseOptions) (*View, error) {
	if name == "" {
		return nil, errs.New(errs.ErrMissingParameter, "view name is empty")
	}
	v := &View{Name: name}
	fail := func(kind error, format string, args ...interface{}) error {
		return &errs.Error{Kind: kind, Message: fmt.Sprintf("view %s: ", name) + fmt.Sprintf(format, args...)}
	}

	switch path := decl[KeyPath].(type) {
	case nil:
		return nil, fail(errs.ErrMissingParameter, "missing %q", KeyPath)
	case string:
		v.Path = path
	case map[string]interface{}:
		if err := v.parseComplexPath(path, fail); err != nil {
			return nil, err
		}
	default:
		return nil, fail(errs.ErrView, "%q must be a string or a mapping, got %T", KeyPath, path)
	}

	tmpl, ok := decl[KeyTemplate].(string)
	if !ok || tmpl == "" {
		return nil, fail(errs.ErrMissingParameter, "missing %q", KeyTemplate)
	}
	v.Template = tmpl

	v.Context.Initial = opts.Initial
	if ctx, ok := decl[KeyContext].(map[string]interface{}); ok {
		v.Context.Static = utils.UnderscoreKeys(asMapping(ctx[KeyStatic]))
		v.Context.Dynamic = utils.UnderscoreKeys(asMapping(ctx[KeyDynamic]))
		v.Context.ForEach = utils.UnderscoreKeys(asMapping(ctx[KeyForEach]))
	} else if decl[KeyContext] != nil {
		return nil, fail(errs.ErrView, "%q must be a mapping", KeyContext)
	}
	if len(v.Context.ForEach) > 0 && !v.Complex {
		return nil, fail(errs.ErrView, "for-each context needs a complex path")
	}
	return v, nil
}

func (v *View) parseComplexPath(path map[string]interface{}, fail func(error, string, ...interface{}) error) error {
	tmpl, ok := path[KeyTemplate].(string)
	if !ok || tmpl == "" {
		return fail(errs.ErrMissingParameter, "complex path needs a %q string", KeyTemplate)
	}
	forEach, ok := path[KeyForEach].(map[string]interface{})
	if !ok {
		return fail(errs.ErrMissingParameter, "complex path needs a %q mapping", KeyForEach)
	}
	if len(forEach) != 1 {
		return fail(errs.ErrView, "%q must bind exactly one variable, got %d", KeyForEach, len(forEach))
	}

	v.Complex = true
	v.Path = tmpl
	for variable, query := range forEach {
		v.Variable = variable
		v.Query = query
	}

	if raw, ok := path[KeyPaginate]; ok && raw != nil {
		pagination, err := parsePagination(raw)
		if err != nil {
			return fail(errs.ErrView, "%v", err)
		}
		v.Paginate = pagination
	}
	return nil
}

func parsePagination(raw interface{}) (*Pagination, error) {
	p := &Pagination{StartPage: 1}
	var err error
	switch value := raw.(type) {
	case map[string]interface{}:
		for _, key := range sortedKeys(value) {
			switch key {
			case KeyPerPage:
				p.PerPage, err = cast.ToIntE(value[key])
			case KeyOffset:
				p.Offset, err = cast.ToIntE(value[key])
			case KeyStart:
				p.StartPage, err = cast.ToIntE(value[key])
			default:
				return nil, fmt.Errorf("unknown pagination key %q", key)
			}
			if err != nil {
				return nil, fmt.Errorf("pagination %s: %w", key, err)
			}
		}
	default:
		if p.PerPage, err = cast.ToIntE(value); err != nil {
			return nil, fmt.Errorf("pagination: %w", err)
		}
	}

	if p.PerPage <= 0 {
		return nil, fmt.Errorf("pagination needs a positive %s, got %d", KeyPerPage, p.PerPage)
	}
	if p.Offset < 0 {
		return nil, fmt.Errorf("pagination offset must not be negative, got %d", p.Offset)
	}
	return p, nil
}

// Load parses a view declaration file, the file stem being the view name
func Load(path string, opts ParseOptions) (*View, error) {
	data, err := content.LoadData(path)
	if err != nil {
		return nil, err
	}
	decl, ok := data.(map[string]interface{})
	if !ok {
		return nil, errs.New(errs.ErrView, "a view must be a mapping, got %T", data).WithFile(path)
	}
	v, err := Parse(utils.ExtractFilename(path), decl, opts)
	if err != nil {
		return nil, errs.InFile(err, errs.ErrView, path)
	}
	return v, nil
}

// LoadDir parses every view declaration in dir
func LoadDir(dir string, opts ParseOptions) (map[string]*View, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrMissingProjectFolder, err, "cannot list views").WithFile(dir)
	}

	views := map[string]*View{}
	for _, file := range files {
		format, ok := content.FormatOf(file.Name())
		if file.IsDir() || !ok || format == content.Markdown {
			continue
		}
		path := filepath.Join(dir, file.Name())
		v, err := Load(path, opts)
		if err != nil {
			return nil, err
		}
		if _, ok := views[v.Name]; ok {
			return nil, errs.New(errs.ErrView, "view %s declared twice", v.Name).WithFile(path)
		}
		views[v.Name] = v
	}
	if len(views) == 0 {
		return nil, errs.New(errs.ErrNoViews, "no view declared").WithFile(dir)
	}
	return views, nil
}

func asMapping(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
