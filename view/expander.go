package view

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/logger"
	"github.com/statikgen/statik/templating"
	"github.com/statikgen/statik/tree"
	"github.com/statikgen/statik/utils"
	"golang.org/x/sync/errgroup"
)

// Querier runs the queries views declare, in whatever mode the build uses
type Querier interface {
	Query(q interface{}, bindings map[string]interface{}) (interface{}, error)
}

// Templates loads the templates views render with
type Templates interface {
	LoadTemplate(name string) (templating.Template, error)
	CreateTextTemplate(s string) (templating.Template, error)
}

// Config expander config
type Config struct {
	// DefaultFilename and DefaultExt name the file written for paths
	// without an extension, `index` and `.html` by default
	DefaultFilename string
	DefaultExt      string
	// Workers number of views expanded at once
	Workers int
	Logger  logger.Interface
	Context context.Context
}

type compiled struct {
	view *View
	tmpl templating.Template
	path templating.Template
}

// Expander renders views against a database
type Expander struct {
	*Config
	DB    Querier
	views map[string]*compiled
	names []string
}

// NewExpander loads the template of every view
func NewExpander(views map[string]*View, db Querier, templates Templates, config *Config) (*Expander, error) {
	if config == nil {
		config = &Config{}
	}
	if config.DefaultFilename == "" {
		config.DefaultFilename = "index"
	}
	if config.DefaultExt == "" {
		config.DefaultExt = ".html"
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Logger == nil {
		config.Logger = logger.Default
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	e := &Expander{Config: config, DB: db, views: make(map[string]*compiled, len(views))}
	for name, v := range views {
		c := &compiled{view: v}
		var err error
		if c.tmpl, err = templates.LoadTemplate(v.Template); err != nil {
			return nil, errs.InFile(err, errs.ErrTemplate, name)
		}
		// paths are rendered as plain text, record keys land in them as is
		if v.Complex || strings.Contains(v.Path, "{{") {
			if c.path, err = templates.CreateTextTemplate(v.Path); err != nil {
				return nil, err
			}
		}
		e.views[name] = c
		e.names = append(e.names, name)
	}
	sort.Strings(e.names)
	return e, nil
}

// Names view names in render order
func (e *Expander) Names() []string {
	return append([]string(nil), e.names...)
}

// RenderAll renders every view and merges the results in view name order,
// later views overwriting files of earlier ones
func (e *Expander) RenderAll(extra map[string]interface{}) (*tree.Node, error) {
	results := make([]*tree.Node, len(e.names))

	g := new(errgroup.Group)
	g.SetLimit(e.Workers)
	for i, name := range e.names {
		i, name := i, name
		g.Go(func() error {
			node, err := e.Render(name, extra)
			if err != nil {
				return err
			}
			results[i] = node
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	root := tree.NewDir()
	for i, node := range results {
		merged, err := tree.Merge(root, node)
		if err != nil {
			return nil, errs.InFile(err, errs.ErrTreeConflict, e.names[i])
		}
		root = merged
	}
	return root, nil
}

// Render expands one view. extra is applied last and wins over every other
// context source.
func (e *Expander) Render(name string, extra map[string]interface{}) (node *tree.Node, err error) {
	c, ok := e.views[name]
	if !ok {
		return nil, errs.New(errs.ErrView, "unknown view %q", name)
	}

	begin := time.Now()
	defer func() {
		e.Logger.Trace(e.Context, begin, func() (string, int64) {
			return "render view " + name, int64(node.Len())
		}, err)
	}()

	base, err := e.baseContext(c.view)
	if err != nil {
		return nil, err
	}
	if !c.view.Complex {
		return e.renderOne(c, nil, merge(base, extra))
	}

	instances, err := e.instances(c.view)
	if err != nil {
		return nil, err
	}
	e.Logger.Debug(e.Context, "view %s expands to %d path(s)", name, len(instances))

	root := tree.NewDir()
	for _, inst := range instances {
		ctx := merge(base, map[string]interface{}{c.view.Variable: inst})
		for _, key := range sortedKeys(c.view.Context.ForEach) {
			value, err := e.DB.Query(c.view.Context.ForEach[key], map[string]interface{}{c.view.Variable: inst})
			if err != nil {
				return nil, viewError(name, err)
			}
			ctx[key] = value
		}

		rendered, err := e.renderOne(c, inst, merge(ctx, extra))
		if err != nil {
			return nil, err
		}
		if root, err = tree.Merge(root, rendered); err != nil {
			return nil, viewError(name, err)
		}
	}
	return root, nil
}

// baseContext initial, static then dynamic context of a view
func (e *Expander) baseContext(v *View) (map[string]interface{}, error) {
	ctx := merge(v.Context.Initial, v.Context.Static)
	for _, key := range sortedKeys(v.Context.Dynamic) {
		value, err := e.DB.Query(v.Context.Dynamic[key], nil)
		if err != nil {
			return nil, viewError(v.Name, err)
		}
		ctx[key] = value
	}
	return ctx, nil
}

// instances records, or pages of records, a complex view expands for
func (e *Expander) instances(v *View) ([]interface{}, error) {
	result, err := e.DB.Query(v.Query, nil)
	if err != nil {
		return nil, viewError(v.Name, err)
	}
	items, ok := toList(result)
	if !ok {
		return nil, errs.New(errs.ErrView, "view %s: for-each query must return a list, got %T", v.Name, result)
	}
	if v.Paginate == nil {
		return items, nil
	}

	pages := Paginate(items, v.Paginate.PerPage, v.Paginate.Offset, v.Paginate.StartPage)
	instances := make([]interface{}, len(pages))
	for i, page := range pages {
		instances[i] = page
	}
	return instances, nil
}

func (e *Expander) renderOne(c *compiled, inst interface{}, ctx map[string]interface{}) (*tree.Node, error) {
	path, err := e.path(c, inst)
	if err != nil {
		return nil, err
	}
	if ext := utils.URLFileExt(path); ext == "" {
		path = utils.AddURLPathComponent(path, e.DefaultFilename+e.DefaultExt)
	}

	out, err := c.tmpl.Render(ctx)
	if err != nil {
		return nil, viewError(c.view.Name, err)
	}
	node, err := tree.FromPath(path, out)
	if err != nil {
		return nil, viewError(c.view.Name, err)
	}
	return node, nil
}

func (e *Expander) path(c *compiled, inst interface{}) (string, error) {
	if c.path == nil {
		return c.view.Path, nil
	}
	ctx := map[string]interface{}{}
	if c.view.Complex {
		ctx[c.view.Variable] = inst
	}
	path, err := c.path.Render(ctx)
	if err != nil {
		return "", viewError(c.view.Name, err)
	}
	return strings.TrimSpace(path), nil
}

// URL reverse-resolves the path of a view for inst. Paths without a file
// extension end with a slash.
func (e *Expander) URL(name string, inst interface{}) (string, error) {
	c, ok := e.views[name]
	if !ok {
		return "", errs.New(errs.ErrView, "url: unknown view %q", name)
	}
	if c.view.Complex && inst == nil {
		return "", errs.New(errs.ErrView, "url: view %s needs an instance", name)
	}

	path, err := e.path(c, inst)
	if err != nil {
		return "", err
	}
	if utils.URLFileExt(path) == "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path, nil
}

func viewError(name string, err error) error {
	if e, ok := err.(*errs.Error); ok {
		if e.File == "" {
			e.File = "views/" + name
		}
		return e
	}
	return errs.Wrap(errs.ErrView, err, "view %s", name)
}

// merge copies a then b into a new map
func merge(a, b map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		result[k] = v
	}
	for k, v := range b {
		result[k] = v
	}
	return result
}

func toList(v interface{}) ([]interface{}, bool) {
	if list, ok := v.([]interface{}); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	list := make([]interface{}, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}
