// Package tree holds the rendered output of a build: a nested mapping of
// path segments to file contents.
package tree

import (
	"sort"
	"strings"

	"github.com/statikgen/statik/internal/errs"
)

// Node a directory or a file. The zero value is an empty directory.
type Node struct {
	content  string
	leaf     bool
	children map[string]*Node
}

// NewDir returns an empty directory
func NewDir() *Node {
	return &Node{children: map[string]*Node{}}
}

// NewLeaf returns a file holding content
func NewLeaf(content string) *Node {
	return &Node{content: content, leaf: true}
}

// Segments splits a URL path into its non-empty segments
func Segments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// FromPath builds the chain of directories leading to a single file
func FromPath(path, content string) (*Node, error) {
	segments := Segments(path)
	if len(segments) == 0 {
		return nil, errs.New(errs.ErrView, "empty output path %q", path)
	}

	for _, segment := range segments {
		if segment == "." || segment == ".." {
			return nil, errs.New(errs.ErrView, "output path %q leaves its folder", path)
		}
	}

	node := NewLeaf(content)
	for i := len(segments) - 1; i >= 0; i-- {
		node = &Node{children: map[string]*Node{segments[i]: node}}
	}
	return node, nil
}

// IsLeaf reports whether the node is a file
func (n *Node) IsLeaf() bool {
	return n != nil && n.leaf
}

// Content file content, empty for directories
func (n *Node) Content() string {
	if n == nil {
		return ""
	}
	return n.content
}

// Names sorted child names
func (n *Node) Names() []string {
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Child returns a direct child
func (n *Node) Child(name string) *Node {
	if n == nil || n.leaf {
		return nil
	}
	return n.children[name]
}

// Get walks path from n
func (n *Node) Get(path string) *Node {
	node := n
	for _, segment := range Segments(path) {
		if node = node.Child(segment); node == nil {
			return nil
		}
	}
	return node
}

// Files maps the path of every file under n to its content
func (n *Node) Files() map[string]string {
	files := map[string]string{}
	n.walk("", func(path string, leaf *Node) {
		files[path] = leaf.content
	})
	return files
}

// Paths sorted paths of every file under n
func (n *Node) Paths() []string {
	var paths []string
	n.walk("", func(path string, _ *Node) {
		paths = append(paths, path)
	})
	return paths
}

// Len number of files under n
func (n *Node) Len() int {
	count := 0
	n.walk("", func(string, *Node) { count++ })
	return count
}

func (n *Node) walk(prefix string, fc func(path string, leaf *Node)) {
	if n == nil {
		return
	}
	if n.leaf {
		fc(prefix, n)
		return
	}
	for _, name := range n.Names() {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		n.children[name].walk(path, fc)
	}
}

// Merge deep-merges b over a into a new tree, leaving both untouched.
// Files in b replace files in a, directories merge recursively and a file
// meeting a directory is an ErrTreeConflict.
func Merge(a, b *Node) (*Node, error) {
	return merge(a, b, "")
}

func merge(a, b *Node, path string) (*Node, error) {
	switch {
	case a == nil:
		return b.clone(), nil
	case b == nil:
		return a.clone(), nil
	case a.leaf && b.leaf:
		return NewLeaf(b.content), nil
	case a.leaf != b.leaf:
		return nil, errs.New(errs.ErrTreeConflict, "%q is both a file and a directory", "/"+path)
	}

	result := NewDir()
	for name, child := range a.children {
		result.children[name] = child.clone()
	}
	for name, child := range b.children {
		childPath := name
		if path != "" {
			childPath = path + "/" + name
		}
		merged, err := merge(result.children[name], child, childPath)
		if err != nil {
			return nil, err
		}
		result.children[name] = merged
	}
	return result, nil
}

func (n *Node) clone() *Node {
	if n == nil {
		return nil
	}
	if n.leaf {
		return NewLeaf(n.content)
	}
	result := NewDir()
	for name, child := range n.children {
		result.children[name] = child.clone()
	}
	return result
}
