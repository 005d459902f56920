package scan

import (
	"path/filepath"
	"strings"

	"imgview/internal/errors"

	"github.com/gobwas/glob"
)

// DefaultExtensions is the fixed allow-list of image extensions
var DefaultExtensions = []string{".jpg", ".png", ".bmp", ".gif"}

// Filter decides which directory entries are images. Matching is
// case-insensitive on the extension.
type Filter struct {
	extensions []string
	pattern    glob.Glob
}

// NewFilter compiles a filter for the given extensions. With no arguments
// the DefaultExtensions are used.
func NewFilter(extensions ...string) (*Filter, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	normalized := make([]string, 0, len(extensions))
	quoted := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			return nil, errors.Newf("invalid extension %q", ext)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
		quoted = append(quoted, glob.QuoteMeta(ext))
	}

	expr := "*{" + strings.Join(quoted, ",") + "}"
	g, err := glob.Compile(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "compile extension pattern %s", expr)
	}

	return &Filter{extensions: normalized, pattern: g}, nil
}

// MustFilter is NewFilter for static extension lists
func MustFilter(extensions ...string) *Filter {
	f, err := NewFilter(extensions...)
	if err != nil {
		panic(err)
	}
	return f
}

// Match reports whether name (a base name or a path) has an allowed
// extension.
func (f *Filter) Match(name string) bool {
	return f.pattern.Match(strings.ToLower(filepath.Base(name)))
}

// Extensions returns the normalized allow-list
func (f *Filter) Extensions() []string {
	out := make([]string, len(f.extensions))
	copy(out, f.extensions)
	return out
}
