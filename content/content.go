// Package content reads the files a project is made of: YAML and JSON data,
// and Markdown documents with an optional YAML front matter block.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/utils"
	"github.com/tailscale/hujson"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// Format source file format
type Format string

const (
	YAML     Format = "yaml"
	JSON     Format = "json"
	Markdown Format = "markdown"
)

var extensions = map[string]Format{
	".yml":      YAML,
	".yaml":     YAML,
	".json":     JSON,
	".md":       Markdown,
	".markdown": Markdown,
}

const frontMatterDelimiter = "---"

// Options markdown rendering options
type Options struct {
	AutoHeadingIDs bool
	UnsafeHTML     bool
	Typographer    bool
}

// Source a parsed file
type Source struct {
	Name    string
	Path    string
	Format  Format
	Vars    map[string]interface{}
	Body    template.HTML
	Text    string
	HasBody bool
}

// FormatOf returns the format of path and whether it is supported
func FormatOf(path string) (Format, bool) {
	format, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return format, ok
}

// IsSupported reports whether path can be loaded
func IsSupported(path string) bool {
	_, ok := FormatOf(path)
	return ok
}

// Load reads a YAML, JSON or Markdown file. Data files must hold a mapping;
// Markdown files yield their front matter as Vars and the rendered body.
func Load(path string, opts Options) (*Source, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errs.New(errs.ErrUnsupportedSource, "unsupported extension %q", filepath.Ext(path)).WithFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrMissingParameter, err, "cannot read").WithFile(path)
	}

	source := &Source{Name: utils.ExtractFilename(path), Path: path, Format: format}

	switch format {
	case Markdown:
		front, body := SplitFrontMatter(string(data))
		if source.Vars, err = decodeMapping(YAML, []byte(front)); err != nil {
			return nil, errs.InFile(err, errs.ErrInvalidCollection, path)
		}
		source.Text = body
		source.HasBody = true
		if source.Body, err = RenderMarkdown(body, opts); err != nil {
			return nil, errs.InFile(err, errs.ErrTemplate, path)
		}
	default:
		if source.Vars, err = decodeMapping(format, data); err != nil {
			return nil, errs.InFile(err, errs.ErrInvalidCollection, path)
		}
	}
	return source, nil
}

// LoadData decodes a YAML or JSON file into plain Go values
func LoadData(path string) (interface{}, error) {
	format, ok := FormatOf(path)
	if !ok || format == Markdown {
		return nil, errs.New(errs.ErrUnsupportedSource, "not a data file").WithFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrMissingParameter, err, "cannot read").WithFile(path)
	}

	value, err := Decode(format, data)
	if err != nil {
		return nil, errs.InFile(err, errs.ErrInvalidCollection, path)
	}
	return value, nil
}

// Decode decodes YAML or JSON (comments and trailing commas allowed) data
func Decode(format Format, data []byte) (interface{}, error) {
	var value interface{}
	switch format {
	case JSON:
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		if err := json.Unmarshal(standardized, &value); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	case YAML:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, nil
		}
		if err := yaml.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot decode %s", format)
	}
	return utils.StringKeys(value), nil
}

func decodeMapping(format Format, data []byte) (map[string]interface{}, error) {
	value, err := Decode(format, data)
	if err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case nil:
		return map[string]interface{}{}, nil
	case map[string]interface{}:
		return v, nil
	}
	return nil, fmt.Errorf("expected a mapping, got %T", value)
}

// SplitFrontMatter separates a leading `---` delimited YAML block from the
// document body
func SplitFrontMatter(text string) (front, body string) {
	normalized := strings.ReplaceAll(strings.TrimPrefix(text, "\ufeff"), "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontMatterDelimiter {
		return "", text
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelimiter {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", text
}

// RenderMarkdown converts Markdown text to HTML
func RenderMarkdown(text string, opts Options) (template.HTML, error) {
	var (
		buf            bytes.Buffer
		parserOptions  []parser.Option
		rendererOption []goldmark.Option
		exts           = []goldmark.Extender{extension.GFM}
	)

	if opts.AutoHeadingIDs {
		parserOptions = append(parserOptions, parser.WithAutoHeadingID())
	}
	if opts.Typographer {
		exts = append(exts, extension.Typographer)
	}
	if opts.UnsafeHTML {
		rendererOption = append(rendererOption, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	md := goldmark.New(append(rendererOption,
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parserOptions...),
	)...)

	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", errs.Wrap(errs.ErrTemplate, err, "cannot render markdown")
	}
	return template.HTML(buf.String()), nil
}
