// Package source owns the immutable bytes of every file fed to the
// compiler and the handles the rest of the pipeline use to refer back to
// them without copying text around.
package source

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Handle identifies a File within a Cache. It is a small integer so it can
// be embedded cheaply in every token and AST node; the Cache also keeps a
// UUID per file for cross-process correlation (see SPEC_FULL.md's domain
// stack section on the worker-pool collaborator).
type Handle int

// File is an immutable, UTF-8-validated source file. Once loaded it never
// changes; callers hold a Handle rather than a *File so the Cache remains
// the single owner.
type File struct {
	Name    string
	Content string
	UUID    uuid.UUID

	lineStarts []int // byte offset of the first byte of each line
}

// Cache is the read-mostly store described in spec.md §5: insertions are
// guarded by a lock, reads are lock-free after population.
type Cache struct {
	mu    sync.Mutex
	files []*File
}

// NewCache returns an empty file cache.
func NewCache() *Cache {
	return &Cache{}
}

// Add validates content as UTF-8, indexes its line starts, and returns a
// stable handle. It is the only mutating operation on Cache.
func (c *Cache) Add(name, content string) (Handle, error) {
	if !utf8.ValidString(content) {
		return -1, errors.Errorf("%s: invalid UTF-8", name)
	}
	f := &File{
		Name:    name,
		Content: content,
		UUID:    uuid.New(),
	}
	f.indexLines()

	c.mu.Lock()
	defer c.mu.Unlock()
	h := Handle(len(c.files))
	c.files = append(c.files, f)
	return h, nil
}

// File returns the file registered under h. Panics on an out-of-range
// handle: a bad handle is an internal invariant violation, not a user
// error (spec.md §7's "Internal" taxonomy entry).
func (c *Cache) File(h Handle) *File {
	if h < 0 || int(h) >= len(c.files) {
		panic(fmt.Sprintf("source: invalid handle %d", h))
	}
	return c.files[h]
}

func (f *File) indexLines() {
	f.lineStarts = []int{0}
	for i := 0; i < len(f.Content); i++ {
		if f.Content[i] == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
}

// Line returns the 1-based line's text, without its trailing newline.
func (f *File) Line(line int) string {
	if line < 1 || line > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[line-1]
	end := len(f.Content)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
		if end > start && f.Content[end-1] == '\r' {
			end--
		}
	}
	return f.Content[start:end]
}

// Loc is a source location: a tuple of (file, line, column, byte offset,
// span length) per spec.md §3.
type Loc struct {
	File   Handle
	Line   int
	Column int
	Offset int
	Length int
}

// Caret renders the offending line from cache followed by a caret
// underline of width Length, per spec.md §6's diagnostic format.
func (l Loc) Caret(c *Cache) string {
	f := c.File(l.File)
	line := f.Line(l.Line)
	width := l.Length
	if width < 1 {
		width = 1
	}
	col := l.Column
	if col < 1 {
		col = 1
	}
	pad := ""
	for i := 1; i < col; i++ {
		pad += " "
	}
	underline := ""
	for i := 0; i < width; i++ {
		underline += "^"
	}
	return line + "\n" + pad + underline
}

func (l Loc) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}
