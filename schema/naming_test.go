package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingStrategy(t *testing.T) {
	ns := NamingStrategy{}
	assert.Equal(t, "blog_posts", ns.TableName("BlogPost"))
	assert.Equal(t, "categories", ns.TableName("Category"))
	assert.Equal(t, "people", ns.TableName("Person"))
	assert.Equal(t, "post_tag", ns.JoinTableName("Tag", "Post"))
	assert.Equal(t, "fk_posts_author", ns.ForeignKeyName("Post", "author"))

	singular := NamingStrategy{TablePrefix: "st_", SingularTable: true}
	assert.Equal(t, "st_blog_post", singular.TableName("BlogPost"))
	assert.Equal(t, "st_post_tag", singular.JoinTableName("Post", "Tag"))
}

func TestRecord(t *testing.T) {
	r := NewRecord("Post", "hello")
	r["title"] = "Hello"
	assert.Equal(t, "hello", r.PK())
	assert.Equal(t, "Post", r.Model())
	assert.Equal(t, "Hello", r.Get("title"))
	assert.Nil(t, r.Get("missing"))
	assert.Equal(t, [2]string{"Post", "hello"}, r.Identity())
	assert.Equal(t, "Post(hello)", r.String())
}
