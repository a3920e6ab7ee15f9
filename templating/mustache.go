package templating

import (
	"html/template"
	"strings"

	"github.com/cbroglie/mustache"
	"github.com/statikgen/statik/internal/errs"
)

// MustacheExtensions file extensions of Mustache templates
var MustacheExtensions = []string{".mustache", ".html.mustache"}

// MustacheProvider Mustache templates; partials resolve against the same
// search paths
type MustacheProvider struct {
	paths    []string
	partials *mustache.FileProvider
}

// NewMustacheProvider returns a provider reading templates from paths
func NewMustacheProvider(paths []string) *MustacheProvider {
	return &MustacheProvider{
		paths:    paths,
		partials: &mustache.FileProvider{Paths: paths, Extensions: MustacheExtensions},
	}
}

func (p *MustacheProvider) Name() string { return Mustache }

func (p *MustacheProvider) LoadTemplate(name string) (Template, error) {
	path, ok := find(name, p.paths, []string{".html.mustache", ".mustache"})
	if !ok {
		return nil, missing(name)
	}
	tmpl, err := mustache.ParseFilePartials(path, p.partials)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTemplate, err, "cannot parse template").WithFile(path)
	}
	return &mustacheTemplate{name: name, tmpl: tmpl}, nil
}

func (p *MustacheProvider) CreateTemplateFromString(s string) (Template, error) {
	tmpl, err := mustache.ParseStringPartials(s, p.partials)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTemplate, err, "cannot parse %q", s)
	}
	return &mustacheTemplate{name: "inline", tmpl: tmpl}, nil
}

// CreateTextTemplate compiles s with every tag rendered raw
func (p *MustacheProvider) CreateTextTemplate(s string) (Template, error) {
	tmpl, err := mustache.ParseStringPartialsRaw(s, p.partials, true)
	if err != nil {
		return nil, errs.Wrap(errs.ErrTemplate, err, "cannot parse %q", s)
	}
	return &mustacheTemplate{name: "inline", tmpl: tmpl}, nil
}

type mustacheTemplate struct {
	name string
	tmpl *mustache.Template
}

func (t *mustacheTemplate) Render(ctx map[string]interface{}) (string, error) {
	out, err := t.tmpl.Render(plainContext(ctx))
	if err != nil {
		return "", errs.Wrap(errs.ErrTemplate, err, "cannot render %s", t.name)
	}
	return out, nil
}

// plainContext turns template.HTML values into strings so `{{{ }}}` prints
// them as is; nested records are left alone
func plainContext(ctx map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(ctx))
	for k, v := range ctx {
		if html, ok := v.(template.HTML); ok {
			v = string(html)
		}
		result[strings.ReplaceAll(k, "-", "_")] = v
	}
	return result
}
