// Package templating loads and renders the templates of a project through
// a chain of providers: Go html/template and Mustache.
package templating

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/statikgen/statik/internal/errs"
)

// Template a loaded template
type Template interface {
	Render(ctx map[string]interface{}) (string, error)
}

// Provider loads templates of one syntax
type Provider interface {
	Name() string
	// LoadTemplate finds name, with or without extension, in the search paths
	LoadTemplate(name string) (Template, error)
	CreateTemplateFromString(s string) (Template, error)
	// CreateTextTemplate compiles s without HTML escaping, for output paths
	CreateTextTemplate(s string) (Template, error)
}

// SearchPaths template folders of a project, the project's own first
func SearchPaths(projectPath, theme string) []string {
	paths := []string{filepath.Join(projectPath, "templates")}
	if theme != "" {
		paths = append(paths, filepath.Join(projectPath, "themes", theme, "templates"))
	}
	return paths
}

// Engine tries providers in order of precedence
type Engine struct {
	Providers []Provider
	Funcs     *Funcs
}

// Options engine options
type Options struct {
	// Providers provider names by precedence
	Providers []string
	// Paths template search paths by precedence
	Paths []string
	// BasePath prefix of generated URLs
	BasePath string
}

// Provider names
const (
	GoTemplate = "gotemplate"
	Mustache   = "mustache"
)

// NewEngine builds the providers named in opts
func NewEngine(opts Options) (*Engine, error) {
	engine := &Engine{Funcs: NewFuncs(opts.BasePath)}
	for _, name := range opts.Providers {
		switch name {
		case GoTemplate:
			engine.Providers = append(engine.Providers, NewGoProvider(opts.Paths, engine.Funcs))
		case Mustache:
			engine.Providers = append(engine.Providers, NewMustacheProvider(opts.Paths))
		default:
			return nil, errs.New(errs.ErrProjectConfiguration, "unknown template provider %q", name)
		}
	}
	if len(engine.Providers) == 0 {
		return nil, errs.New(errs.ErrProjectConfiguration, "no template provider")
	}
	return engine, nil
}

// LoadTemplate asks every provider in turn, the first one finding name wins
func (engine *Engine) LoadTemplate(name string) (Template, error) {
	var last error
	for _, provider := range engine.Providers {
		tmpl, err := provider.LoadTemplate(name)
		if err == nil {
			return tmpl, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
		last = err
	}
	return nil, last
}

// CreateTemplateFromString compiles s with the provider of highest precedence
func (engine *Engine) CreateTemplateFromString(s string) (Template, error) {
	return engine.Providers[0].CreateTemplateFromString(s)
}

// CreateTextTemplate compiles s as plain text with the provider of highest
// precedence
func (engine *Engine) CreateTextTemplate(s string) (Template, error) {
	return engine.Providers[0].CreateTextTemplate(s)
}

// notFound is returned by providers that do not have a template
type notFound struct {
	name string
}

func (e notFound) Error() string { return "template not found: " + e.name }

// IsNotFound reports whether err means a provider has no such template
func IsNotFound(err error) bool {
	if e, ok := err.(*errs.Error); ok {
		_, ok = e.Err.(notFound)
		return ok
	}
	return false
}

func missing(name string) error {
	return errs.Wrap(errs.ErrTemplate, notFound{name: name}, "cannot load template %q", name)
}

// find returns the first existing file for name in paths, trying name as is
// when it already carries one of exts, then name + each ext
func find(name string, paths, exts []string) (string, bool) {
	candidates := []string{}
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			candidates = append(candidates, name)
			break
		}
	}
	for _, ext := range exts {
		candidates = append(candidates, name+ext)
	}

	for _, dir := range paths {
		for _, candidate := range candidates {
			path := filepath.Join(dir, filepath.FromSlash(candidate))
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}
