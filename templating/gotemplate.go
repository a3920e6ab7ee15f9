package templating

import (
	"bytes"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/statikgen/statik/internal/errs"
)

// GoExtensions file extensions of Go templates
var GoExtensions = []string{".html", ".gohtml", ".tmpl"}

// GoProvider html/template provider. Every template file in the search paths
// is parsed into one set, named by its path relative to the search path, so
// templates can include each other with `{{ template "partials/nav.html" . }}`.
type GoProvider struct {
	paths []string
	funcs *Funcs

	once sync.Once
	set  *template.Template
	err  error
}

// NewGoProvider returns a provider reading templates from paths
func NewGoProvider(paths []string, funcs *Funcs) *GoProvider {
	if funcs == nil {
		funcs = NewFuncs("/")
	}
	return &GoProvider{paths: paths, funcs: funcs}
}

func (p *GoProvider) Name() string { return GoTemplate }

func (p *GoProvider) load() {
	p.set = template.New("").Funcs(p.funcs.Map())
	seen := map[string]bool{}

	for _, dir := range p.paths {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		p.err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || !hasExt(path, GoExtensions) {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(rel)
			// earlier search paths override later ones
			if seen[name] {
				return nil
			}
			seen[name] = true

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if _, err := p.set.New(name).Parse(string(data)); err != nil {
				return errs.Wrap(errs.ErrTemplate, err, "cannot parse template").WithFile(path)
			}
			return nil
		})
		if p.err != nil {
			p.err = errs.InFile(p.err, errs.ErrTemplate, dir)
			return
		}
	}
}

func (p *GoProvider) LoadTemplate(name string) (Template, error) {
	p.once.Do(p.load)
	if p.err != nil {
		return nil, p.err
	}

	candidates := []string{name}
	for _, ext := range GoExtensions {
		candidates = append(candidates, name+ext)
	}
	for _, candidate := range candidates {
		if tmpl := p.set.Lookup(candidate); tmpl != nil {
			return &goTemplate{tmpl: tmpl}, nil
		}
	}
	return nil, missing(name)
}

func (p *GoProvider) CreateTemplateFromString(s string) (Template, error) {
	tmpl, err := template.New("inline").Funcs(p.funcs.Map()).Parse(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTemplate, err, "cannot parse %q", s)
	}
	return &goTemplate{tmpl: tmpl}, nil
}

// CreateTextTemplate compiles s with text/template, output is not escaped
func (p *GoProvider) CreateTextTemplate(s string) (Template, error) {
	tmpl, err := texttemplate.New("inline").Funcs(texttemplate.FuncMap(p.funcs.Map())).Parse(s)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTemplate, err, "cannot parse %q", s)
	}
	return &goTemplate{tmpl: tmpl}, nil
}

// executor is satisfied by both html/template and text/template
type executor interface {
	Execute(w io.Writer, data interface{}) error
	Name() string
}

type goTemplate struct {
	tmpl executor
}

func (t *goTemplate) Render(ctx map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, ctx); err != nil {
		return "", errs.Wrap(errs.ErrTemplate, err, "cannot render %s", t.tmpl.Name())
	}
	return buf.String(), nil
}

func hasExt(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
