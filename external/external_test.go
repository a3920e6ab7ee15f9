package external

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/statikgen/statik/internal/errs"
	"github.com/statikgen/statik/logger"
	"github.com/statikgen/statik/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testModels(t *testing.T) map[string]*schema.Model {
	t.Helper()
	known := []string{"Author", "Post"}
	author, err := schema.ParseModel("Author", schema.Declaration{{Name: "name", Type: "String"}}, known, nil)
	require.NoError(t, err)
	post, err := schema.ParseModel("Post", schema.Declaration{
		{Name: "title", Type: "String"},
		{Name: "views", Type: "Integer"},
		{Name: "author", Type: "Author"},
	}, known, nil)
	require.NoError(t, err)
	return map[string]*schema.Model{"Author": author, "Post": post}
}

func openTestDB(t *testing.T, override bool) *Importer {
	t.Helper()
	im, err := Open(&Config{
		Type:     SQLite,
		DSN:      filepath.Join(t.TempDir(), "site.db"),
		Override: override,
		Logger:   logger.Discard,
	})
	require.NoError(t, err)
	t.Cleanup(func() { im.Close() })

	db := im.DB()
	for _, stmt := range []string{
		"CREATE TABLE authors (pk TEXT PRIMARY KEY, name TEXT)",
		"CREATE TABLE posts (pk TEXT PRIMARY KEY, title TEXT, views INTEGER, author_id TEXT)",
		"INSERT INTO authors VALUES ('michael', 'Michael')",
		"INSERT INTO posts VALUES ('hello', 'Hello World', 10, 'michael')",
		"INSERT INTO posts VALUES ('second', 'Second', NULL, NULL)",
	} {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}
	return im
}

func readYAML(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestImport(t *testing.T) {
	im := openTestDB(t, false)
	dataPath := t.TempDir()

	written, err := im.Import(context.Background(), testModels(t), dataPath)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	assert.Equal(t, map[string]interface{}{"name": "Michael"}, readYAML(t, filepath.Join(dataPath, "Author", "michael.yml")))
	assert.Equal(t, map[string]interface{}{
		"title":  "Hello World",
		"views":  10,
		"author": "michael",
	}, readYAML(t, filepath.Join(dataPath, "Post", "hello.yml")))
	assert.Equal(t, map[string]interface{}{"title": "Second"}, readYAML(t, filepath.Join(dataPath, "Post", "second.yml")))
}

func TestImportKeepsExistingFiles(t *testing.T) {
	dataPath := t.TempDir()
	existing := filepath.Join(dataPath, "Author", "michael.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("name: Edited\n"), 0o644))

	im := openTestDB(t, false)
	im.Models = []string{"Author"}
	written, err := im.Import(context.Background(), testModels(t), dataPath)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	assert.Equal(t, "Edited", readYAML(t, existing)["name"])

	im.Override = true
	written, err = im.Import(context.Background(), testModels(t), dataPath)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	assert.Equal(t, "Michael", readYAML(t, existing)["name"])
}

func TestImportErrors(t *testing.T) {
	_, err := Open(&Config{Type: "oracle", DSN: "x"})
	assert.True(t, errors.Is(err, errs.ErrProjectConfiguration))

	im := openTestDB(t, false)
	im.Models = []string{"Comment"}
	_, err = im.Import(context.Background(), testModels(t), t.TempDir())
	assert.True(t, errors.Is(err, errs.ErrProjectConfiguration))

	known := []string{"Tag"}
	tag, err := schema.ParseModel("Tag", nil, known, nil)
	require.NoError(t, err)
	im.Models = nil
	_, err = im.Import(context.Background(), map[string]*schema.Model{"Tag": tag}, t.TempDir())
	assert.True(t, errors.Is(err, errs.ErrExternalDatabase))
	assert.True(t, errors.Is(err, ErrMissingTable))

	author, err := schema.ParseModel("Author", schema.Declaration{{Name: "email", Type: "String"}}, []string{"Author"}, nil)
	require.NoError(t, err)
	_, err = im.Import(context.Background(), map[string]*schema.Model{"Author": author}, t.TempDir())
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestImportRejectsUnsafeKeys(t *testing.T) {
	for _, pk := range []string{"..", ".", "../evil", "a/b", `a\b`} {
		t.Run(pk, func(t *testing.T) {
			im := openTestDB(t, false)
			im.Models = []string{"Author"}
			require.NoError(t, im.DB().Exec("INSERT INTO authors VALUES (?, 'Evil')", pk).Error)

			parent := t.TempDir()
			dataPath := filepath.Join(parent, "data")
			_, err := im.Import(context.Background(), testModels(t), dataPath)
			assert.True(t, errors.Is(err, errs.ErrExternalDatabase))

			var e *errs.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, pk, e.PK)
			assert.NoFileExists(t, filepath.Join(parent, "evil.yml"))
			assert.NoFileExists(t, filepath.Join(dataPath, "evil.yml"))
		})
	}
}

func TestNewDialect(t *testing.T) {
	for _, name := range []string{"sqlite", "SQLite3", "postgresql", "postgres"} {
		assert.NotNil(t, NewDialect(name), name)
	}
	assert.Nil(t, NewDialect("mysql"))

	d := NewDialect(PostgreSQL)
	assert.Equal(t, "postgres", d.Dialector("host=localhost").Name())

	other := errors.New("connection refused")
	assert.Equal(t, other, d.Translate(other))
}
