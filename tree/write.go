package tree

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/statikgen/statik/internal/errs"
)

// Layout how output paths map to files on disk
type Layout string

const (
	// Pretty writes every path as is
	Pretty Layout = "pretty"
	// Standard writes `a/b/index.html` as `a/b.html`, keeping the root index
	Standard Layout = "standard"
)

// FilePath maps an output path to the file written for it
func (layout Layout) FilePath(p string, index string) string {
	if layout != Standard {
		return p
	}
	dir, base := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")
	if base != index || dir == "" {
		return p
	}
	return dir + path.Ext(base)
}

// Write writes every file of root under dir and returns how many were
// written. index is the default file name, e.g. `index.html`, folded into its
// parent directory by the Standard layout.
func Write(root *Node, dir string, layout Layout, index string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errs.Wrap(errs.ErrMissingProjectFolder, err, "cannot create output directory").WithFile(dir)
	}

	files := root.Files()
	written := map[string]string{}
	count := 0
	for _, p := range root.Paths() {
		target := layout.FilePath(p, index)
		if previous, ok := written[target]; ok {
			return count, errs.New(errs.ErrTreeConflict, "%s and %s both write %s", previous, p, target)
		}
		written[target] = p

		filename := filepath.Join(dir, filepath.FromSlash(target))
		if !within(dir, filename) {
			return count, errs.New(errs.ErrView, "%s is outside the output directory", p).WithFile(filename)
		}
		if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return count, errs.Wrap(errs.ErrTreeConflict, err, "cannot create directory for %s", p).WithFile(filename)
		}
		if err := atomic.WriteFile(filename, strings.NewReader(files[p])); err != nil {
			return count, errs.Wrap(errs.ErrTreeConflict, err, "cannot write %s", p).WithFile(filename)
		}
		count++
	}
	return count, nil
}

// within reports whether filename lies strictly under dir
func within(dir, filename string) bool {
	rel, err := filepath.Rel(dir, filename)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// String renders the tree as an indented listing, files show their size
func (n *Node) String() string {
	var b strings.Builder
	n.print(&b, 0)
	return b.String()
}

func (n *Node) print(b *strings.Builder, depth int) {
	for _, name := range n.Names() {
		child := n.children[name]
		b.WriteString(strings.Repeat("  ", depth))
		if child.leaf {
			fmt.Fprintf(b, "%s (%d bytes)\n", name, len(child.content))
			continue
		}
		b.WriteString(name + "/\n")
		child.print(b, depth+1)
	}
}
