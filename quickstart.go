package statik

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/statikgen/statik/internal/errs"
)

var quickstartFiles = map[string]string{
	ConfigFile: `project-name: My Blog
base-path: /
context:
  static:
    site-title: My Blog
`,
	filepath.Join(ModelsDir, "Author.yml"): `name: String
`,
	filepath.Join(ModelsDir, "Post.yml"): `title: String
published: DateTime
author: Author -> posts
content: Content
`,
	filepath.Join(DataDir, "Author", "jane.yml"): `name: Jane Doe
`,
	filepath.Join(DataDir, "Post", "hello-world.md"): `---
title: Hello World
published: 2024-01-01 10:00
author: jane
---
Welcome to your new **statik** site.
`,
	filepath.Join(ViewsDir, "home.yml"): `path: /
template: home
context:
  dynamic:
    posts:
      from: Post
      order-by: -published
`,
	filepath.Join(ViewsDir, "posts.yml"): `path:
  template: /{{ .post.pk }}/
  for-each:
    post:
      from: Post
template: post
`,
	filepath.Join(TemplatesDir, "home.html"): `<h1>{{ .site_title }}</h1>
<ul>
{{ range .posts }}  <li><a href="{{ url "posts" . }}">{{ .title }}</a></li>
{{ end }}</ul>
`,
	filepath.Join(TemplatesDir, "post.html"): `<h1>{{ .post.title }}</h1>
<p>by {{ .post.author.name }}, {{ date "January 2, 2006" .post.published }}</p>
{{ .post.content }}
`,
	filepath.Join(AssetsDir, "style.css"): `body { font-family: sans-serif; }
`,
}

// Quickstart writes a small blog project into path. Existing files are
// left alone; the returned list names the files created.
func Quickstart(path string) ([]string, error) {
	names := make([]string, 0, len(quickstartFiles))
	for name := range quickstartFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	var created []string
	for _, name := range names {
		target := filepath.Join(path, name)
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return created, errs.Wrap(errs.ErrMissingProjectFolder, err, "cannot create project folder").WithFile(target)
		}
		if err := atomic.WriteFile(target, strings.NewReader(quickstartFiles[name])); err != nil {
			return created, errs.Wrap(errs.ErrMissingProjectFolder, err, "cannot write").WithFile(target)
		}
		created = append(created, target)
	}
	return created, nil
}
