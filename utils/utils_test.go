package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileWithLineNum(t *testing.T) {
	t.Log("file line with num: ", FileWithLineNum())
}

func TestURLFileExt(t *testing.T) {
	tests := map[string]string{
		"/":                  "",
		"/posts/hello/":      "",
		"/posts/hello":       "",
		"/feed.xml":          ".xml",
		"/assets/site.js":    ".js",
		"/.htaccess":         ".htaccess",
		"posts/2020/a.b/idx": "",
	}
	for url, ext := range tests {
		assert.Equal(t, ext, URLFileExt(url), url)
	}
}

func TestAddURLPathComponent(t *testing.T) {
	assert.Equal(t, "/posts/index.html", AddURLPathComponent("/posts/", "/index.html"))
	assert.Equal(t, "/index.html", AddURLPathComponent("/", "index.html"))
	assert.Equal(t, "a/b", AddURLPathComponent("a", "b"))
}

func TestUnderscoreKeys(t *testing.T) {
	got := UnderscoreKeys(map[string]interface{}{
		"page-title": "x",
		"nested": map[string]interface{}{
			"other-link": "y",
		},
	})
	assert.Equal(t, map[string]interface{}{
		"page_title": "x",
		"nested": map[string]interface{}{
			"other_link": "y",
		},
	}, got)
	assert.Nil(t, UnderscoreKeys(nil))
}

func TestStringKeys(t *testing.T) {
	got := StringKeys(map[interface{}]interface{}{
		1:     "one",
		"two": []interface{}{map[interface{}]interface{}{"three": 3}},
	})
	assert.Equal(t, map[string]interface{}{
		"1":   "one",
		"two": []interface{}{map[string]interface{}{"three": 3}},
	}, got)
}

func TestToDBName(t *testing.T) {
	tests := map[string]string{
		"":         "",
		"A":        "a",
		"Author":   "author",
		"BlogPost": "blog_post",
		"PostTag":  "post_tag",
		"already":  "already",
	}
	for in, out := range tests {
		assert.Equal(t, out, ToDBName(in), in)
	}
}
