package statik

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/statikgen/statik/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "Untitled project", config.ProjectName)
	assert.Equal(t, "/", config.BasePath)
	assert.Equal(t, "utf-8", config.Encoding)
	assert.Equal(t, DefaultProviders, config.Templates.Providers)
	assert.Equal(t, LayoutPretty, config.Output.Layout)
	assert.Equal(t, "index", config.Output.DefaultFilename)
	assert.Equal(t, ".html", config.Output.DefaultExt)
	assert.Equal(t, 1, config.Build.Workers)
	assert.Equal(t, logger.BackendZerolog, config.Log.Backend)
	assert.False(t, config.SafeMode)
	assert.Nil(t, config.ExternalDatabase)
}

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(`project-name: Blog
base-path: /blog/
safe-mode: true
theme: plain
context:
  static:
    site-title: My Site
  dynamic:
    recent-posts:
      from: Post
      limit: 3
templates:
  providers: [mustache, jinja]
markdown:
  typographer: true
output:
  layout: standard
  default-ext: htm
build:
  workers: 4
log:
  backend: zap
  level: debug
external-database:
  type: sqlite
  dsn: blog.db
  models: [Author]
`), ConfigFile)
	require.NoError(t, err)

	assert.Equal(t, "Blog", config.ProjectName)
	assert.Equal(t, "/blog/", config.BasePath)
	assert.True(t, config.SafeMode)
	assert.Equal(t, "plain", config.Theme)
	assert.Equal(t, map[string]interface{}{"site_title": "My Site"}, config.Context.Static)
	assert.Contains(t, config.Context.Dynamic, "recent_posts")
	assert.Equal(t, []string{ProviderMustache}, config.Templates.Providers)
	assert.True(t, config.MarkdownOptions().Typographer)
	assert.Equal(t, LayoutStandard, config.Output.Layout)
	assert.Equal(t, ".htm", config.Output.DefaultExt)
	assert.Equal(t, 4, config.Build.Workers)
	assert.Equal(t, "zap", config.Log.Backend)
	require.NotNil(t, config.ExternalDatabase)
	assert.Equal(t, []string{"Author"}, config.ExternalDatabase.Models)
}

func TestParseConfigErrors(t *testing.T) {
	for _, data := range []string{
		"project-name: [",
		"templates:\n  providers: [jinja]\n",
		"output:\n  layout: flat\n",
		"log:\n  level: loud\n",
		"external-database:\n  type: sqlite\n",
	} {
		_, err := ParseConfig([]byte(data), ConfigFile)
		require.Error(t, err, data)
		assert.True(t, errors.Is(err, ErrProjectConfiguration), err.Error())

		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, ConfigFile, e.File)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := writeFiles(t, map[string]string{ConfigFile: "project-name: Blog\n"})

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "Blog", config.ProjectName)

	config, err = LoadConfig(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, "Blog", config.ProjectName)

	_, err = LoadConfig(t.TempDir())
	assert.True(t, errors.Is(err, ErrMissingProjectConfig))
}
