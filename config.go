package statik

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/statikgen/statik/content"
	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/logger"
	"github.com/statikgen/statik/utils"
	"gopkg.in/yaml.v3"
)

// ConfigFile name of the project configuration file
const ConfigFile = "config.yml"

// Template providers understood by the templating engine
const (
	ProviderGoTemplate = "gotemplate"
	ProviderMustache   = "mustache"
)

// DefaultProviders template providers used when config.yml names none
var DefaultProviders = []string{ProviderGoTemplate, ProviderMustache}

// Output layouts
const (
	LayoutPretty   = "pretty"
	LayoutStandard = "standard"
)

// ProjectConfig the parsed config.yml of a project
type ProjectConfig struct {
	ProjectName string `yaml:"project-name"`
	BasePath    string `yaml:"base-path"`
	Encoding    string `yaml:"encoding"`
	Theme       string `yaml:"theme"`
	SafeMode    bool   `yaml:"safe-mode"`

	Context struct {
		Static  map[string]interface{} `yaml:"static"`
		Dynamic map[string]interface{} `yaml:"dynamic"`
	} `yaml:"context"`

	Templates struct {
		Providers []string `yaml:"providers"`
	} `yaml:"templates"`

	Markdown struct {
		AutoHeadingIDs bool `yaml:"auto-heading-ids"`
		UnsafeHTML     bool `yaml:"unsafe-html"`
		Typographer    bool `yaml:"typographer"`
	} `yaml:"markdown"`

	Assets struct {
		Source string `yaml:"source"`
		Dest   string `yaml:"dest"`
	} `yaml:"assets"`

	Output struct {
		Layout          string `yaml:"layout"`
		DefaultFilename string `yaml:"default-filename"`
		DefaultExt      string `yaml:"default-ext"`
	} `yaml:"output"`

	Build struct {
		Workers int `yaml:"workers"`
	} `yaml:"build"`

	Log struct {
		Backend string `yaml:"backend"`
		Level   string `yaml:"level"`
	} `yaml:"log"`

	ExternalDatabase *ExternalDatabaseConfig `yaml:"external-database"`
}

// ExternalDatabaseConfig where to import records from before a build
type ExternalDatabaseConfig struct {
	Type     string   `yaml:"type"`
	DSN      string   `yaml:"dsn"`
	Override bool     `yaml:"override"`
	Models   []string `yaml:"models"`
}

// DefaultConfig a configuration with every default applied
func DefaultConfig() *ProjectConfig {
	config := &ProjectConfig{}
	config.applyDefaults()
	return config
}

// LoadConfig reads config.yml from a project directory, or the file itself
func LoadConfig(path string) (*ProjectConfig, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ConfigFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrMissingProjectConfig, err, "no project configuration").WithFile(path)
		}
		return nil, errs.Wrap(errs.ErrProjectConfiguration, err, "cannot read").WithFile(path)
	}
	return ParseConfig(data, path)
}

// ParseConfig decodes config.yml content, file names the source in errors
func ParseConfig(data []byte, file string) (*ProjectConfig, error) {
	config := &ProjectConfig{}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, errs.Wrap(errs.ErrProjectConfiguration, err, "malformed configuration").WithFile(file)
		}
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, errs.InFile(err, errs.ErrProjectConfiguration, file)
	}
	return config, nil
}

func (config *ProjectConfig) applyDefaults() {
	if config.ProjectName == "" {
		config.ProjectName = "Untitled project"
	}
	if config.BasePath == "" {
		config.BasePath = "/"
	}
	if config.Encoding == "" {
		config.Encoding = "utf-8"
	}
	if len(config.Templates.Providers) == 0 {
		config.Templates.Providers = append([]string(nil), DefaultProviders...)
	}
	if config.Assets.Source == "" {
		config.Assets.Source = "assets"
	}
	if config.Assets.Dest == "" {
		config.Assets.Dest = "assets"
	}
	if config.Output.Layout == "" {
		config.Output.Layout = LayoutPretty
	}
	if config.Output.DefaultFilename == "" {
		config.Output.DefaultFilename = "index"
	}
	if config.Output.DefaultExt == "" {
		config.Output.DefaultExt = ".html"
	} else if !strings.HasPrefix(config.Output.DefaultExt, ".") {
		config.Output.DefaultExt = "." + config.Output.DefaultExt
	}
	if config.Build.Workers <= 0 {
		config.Build.Workers = 1
	}
	if config.Log.Backend == "" {
		config.Log.Backend = logger.BackendZerolog
	}
	if config.Log.Level == "" {
		config.Log.Level = "warn"
	}

	config.Context.Static = utils.UnderscoreKeys(config.Context.Static)
	config.Context.Dynamic = utils.UnderscoreKeys(config.Context.Dynamic)
}

func (config *ProjectConfig) validate() error {
	var providers []string
	for _, provider := range config.Templates.Providers {
		if provider == ProviderGoTemplate || provider == ProviderMustache {
			providers = append(providers, provider)
		}
	}
	if len(providers) == 0 {
		return errs.New(errs.ErrProjectConfiguration, "no supported template provider in %v, use one of %v",
			config.Templates.Providers, DefaultProviders)
	}
	config.Templates.Providers = providers

	if config.Output.Layout != LayoutPretty && config.Output.Layout != LayoutStandard {
		return errs.New(errs.ErrProjectConfiguration, "unknown output layout %q", config.Output.Layout)
	}
	if _, err := logger.ParseLevel(config.Log.Level); err != nil {
		return errs.Wrap(errs.ErrProjectConfiguration, err, "log level")
	}
	if db := config.ExternalDatabase; db != nil && (db.Type == "" || db.DSN == "") {
		return errs.New(errs.ErrProjectConfiguration, "external-database needs a type and a dsn")
	}
	return nil
}

// MarkdownOptions options used to render Content fields and Markdown files
func (config *ProjectConfig) MarkdownOptions() content.Options {
	return content.Options{
		AutoHeadingIDs: config.Markdown.AutoHeadingIDs,
		UnsafeHTML:     config.Markdown.UnsafeHTML,
		Typographer:    config.Markdown.Typographer,
	}
}
