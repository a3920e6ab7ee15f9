package templating

import (
	"encoding/json"
	"html/template"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/jinzhu/inflection"
	"github.com/spf13/cast"
	"github.com/statikgen/statik/internal/errs"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// URLResolver reverse-resolves the path of a view, inst being the record
// or page a complex view was expanded for
type URLResolver func(view string, inst interface{}) (string, error)

// Funcs the helpers available to Go templates. The URL resolver is set once
// the views are known, after templates are parsed.
type Funcs struct {
	BasePath string

	mu       sync.RWMutex
	resolver URLResolver
}

// NewFuncs returns helpers producing URLs under basePath
func NewFuncs(basePath string) *Funcs {
	if basePath == "" {
		basePath = "/"
	}
	return &Funcs{BasePath: basePath}
}

// SetURLResolver sets the resolver behind `url`
func (f *Funcs) SetURLResolver(resolver URLResolver) {
	f.mu.Lock()
	f.resolver = resolver
	f.mu.Unlock()
}

// Map the function table handed to html/template
func (f *Funcs) Map() template.FuncMap {
	return template.FuncMap{
		"url":       f.URL,
		"asset":     f.Asset,
		"date":      Date,
		"slugify":   Slugify,
		"title":     Title,
		"pluralize": inflection.Plural,
		"safe":      Safe,
		"json":      JSON,
		"first":     First,
		"lorem":     Lorem,
	}
}

// URL returns the path of view under the base path
func (f *Funcs) URL(view string, inst ...interface{}) (string, error) {
	f.mu.RLock()
	resolver := f.resolver
	f.mu.RUnlock()
	if resolver == nil {
		return "", errs.New(errs.ErrTemplate, "url %q: views are not loaded", view)
	}

	var arg interface{}
	if len(inst) > 0 {
		arg = inst[0]
	}
	path, err := resolver(view, arg)
	if err != nil {
		return "", err
	}
	return joinURL(f.BasePath, path), nil
}

// Asset returns the URL of a file under the base path
func (f *Funcs) Asset(path string) string {
	return joinURL(f.BasePath, path)
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Date formats t, a time or a parsable string, with a Go layout
func Date(layout string, t interface{}) (string, error) {
	value, err := cast.ToTimeE(t)
	if err != nil {
		return "", errs.Wrap(errs.ErrTemplate, err, "date")
	}
	if layout == "" {
		layout = time.RFC3339
	}
	return value.Format(layout), nil
}

// Slugify lowercases s, strips accents and joins words with dashes
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var (
		b    strings.Builder
		dash bool
	)
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// Title capitalizes every word of s
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// Safe marks s as trusted HTML
func Safe(s interface{}) template.HTML {
	return template.HTML(cast.ToString(s))
}

// JSON encodes v
func JSON(v interface{}) (template.JS, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errs.Wrap(errs.ErrTemplate, err, "json")
	}
	return template.JS(data), nil
}

// First returns the first item of a list, or nil
func First(list interface{}) interface{} {
	v := reflect.ValueOf(list)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() > 0 {
			return v.Index(0).Interface()
		}
	case reflect.String:
		if v.Len() > 0 {
			return string([]rune(v.String())[0])
		}
	}
	return nil
}

var loremWords = strings.Fields(`lorem ipsum dolor sit amet consectetur adipiscing elit sed do
eiusmod tempor incididunt ut labore et dolore magna aliqua ut enim ad minim veniam quis nostrud
exercitation ullamco laboris nisi ut aliquip ex ea commodo consequat duis aute irure dolor in
reprehenderit in voluptate velit esse cillum dolore eu fugiat nulla pariatur excepteur sint
occaecat cupidatat non proident sunt in culpa qui officia deserunt mollit anim id est laborum`)

// Lorem returns n words of placeholder text
func Lorem(n int) string {
	if n <= 0 {
		return ""
	}
	words := make([]string, n)
	for i := range words {
		words[i] = loremWords[i%len(loremWords)]
	}
	text := strings.Join(words, " ")
	return strings.ToUpper(text[:1]) + text[1:] + "."
}
