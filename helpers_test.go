package statik

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/statikgen/statik/logger"
	"github.com/stretchr/testify/require"
)

var testNow = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }

// writeFiles creates files under a temp dir and returns it
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

// openDB compiles the models declared in files (`models/<Name>.yml`) and
// loads `data/`
func openDB(t *testing.T, files map[string]string) (*DB, error) {
	t.Helper()
	dir := writeFiles(t, files)
	models, err := LoadModels(filepath.Join(dir, ModelsDir), nil)
	if err != nil {
		return nil, err
	}
	db, err := Open(models, &Config{Logger: logger.Discard, NowFunc: testNow})
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Populate(filepath.Join(dir, DataDir)); err != nil {
		return db, err
	}
	return db, nil
}

func mustOpenDB(t *testing.T, files map[string]string) *DB {
	t.Helper()
	db, err := openDB(t, files)
	require.NoError(t, err)
	return db
}

var blogFiles = map[string]string{
	"models/Author.yml": "name: String\n",
	"models/Post.yml": `title: String
published: DateTime
views: Integer
author: Author -> posts
tags: Tag[] -> posts
content: Content
`,
	"models/Tag.yml": "",
	"data/Author/michael.yml": "name: Michael\n",
	"data/Author/jane.yml":    "name: Jane\n",
	"data/Post/hello.md": `---
title: Hello World
published: 2024-01-02 10:00
views: 10
author: michael
tags: [go, web]
---
First *post*.
`,
	"data/Post/second.yml": `title: Second
published: 2024-02-01
views: 3
author: jane
tags: [go]
content: Some **markdown**
`,
	"data/Post/_all.yml": `- pk: third
  title: Third
  published: 2024-03-01
  views: 7
  author: michael
`,
}
