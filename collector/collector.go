// Package collector turns a local file or directory tree into the content
// that gets submitted to a content-addressed store in a single call.
package collector

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/synchthia/kaizen/models"
)

const (
	// DefaultPrefix is the logical root every virtual path lives under.
	DefaultPrefix = "public"

	// DefaultMarker names the OS folder bookkeeping files that are never uploaded.
	DefaultMarker = ".DS_Store"
)

var ErrSymlinkCycle = errors.New("symlink cycle")

// Options tunes a collection. The zero value uses the defaults above.
type Options struct {
	Prefix string
	Marker string

	// Sorted orders each directory listing by name instead of keeping the
	// order the filesystem reports.
	Sorted bool

	// OnEntry is called after each entry is collected.
	OnEntry func(models.ContentEntry)
}

// Collection is either the raw bytes of a single file or the ordered entries
// of a directory tree, depending on IsDir.
type Collection struct {
	Root    string
	IsDir   bool
	Prefix  string
	Entries []models.ContentEntry
	Content []byte
}

// Len returns the number of entries, or 1 for a single file.
func (c *Collection) Len() int {
	if !c.IsDir {
		return 1
	}
	return len(c.Entries)
}

// Size returns the total number of content bytes held by the collection.
func (c *Collection) Size() int64 {
	if !c.IsDir {
		return int64(len(c.Content))
	}
	var n int64
	for _, e := range c.Entries {
		n += int64(len(e.Content))
	}
	return n
}

type frame struct {
	dir     string
	info    os.FileInfo
	segs    []string
	entries []os.DirEntry
	next    int
}

// Collect reads everything under root. A plain file comes back as its raw
// bytes; a directory comes back as one entry per non-directory descendant,
// depth first. Any filesystem error aborts the whole collection.
func Collect(root string, opts Options) (*Collection, error) {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}

	info, err := stat(root)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		content, err := readFile(root)
		if err != nil {
			return nil, err
		}
		return &Collection{Root: root, Content: content}, nil
	}

	entries, err := list(root, opts.Sorted)
	if err != nil {
		return nil, err
	}

	c := &Collection{Root: root, IsDir: true, Prefix: opts.Prefix, Entries: []models.ContentEntry{}}
	stack := []*frame{{dir: root, info: info, entries: entries}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		name := top.entries[top.next].Name()
		top.next++

		if strings.Contains(name, opts.Marker) {
			continue
		}

		full := filepath.Join(top.dir, name)
		segs := append(append(make([]string, 0, len(top.segs)+1), top.segs...), name)

		info, err := stat(full)
		if err != nil {
			return nil, err
		}

		if info.IsDir() {
			for _, f := range stack {
				if os.SameFile(f.info, info) {
					return nil, fmt.Errorf("%s: %w", full, ErrSymlinkCycle)
				}
			}
			entries, err := list(full, opts.Sorted)
			if err != nil {
				return nil, err
			}
			stack = append(stack, &frame{dir: full, info: info, segs: segs, entries: entries})
			continue
		}

		content, err := readFile(full)
		if err != nil {
			return nil, err
		}

		entry := models.ContentEntry{
			VirtualPath: path.Join(append([]string{opts.Prefix}, segs...)...),
			Content:     content,
		}
		c.Entries = append(c.Entries, entry)
		if opts.OnEntry != nil {
			opts.OnEntry(entry)
		}
	}

	return c, nil
}

func list(dir string, sorted bool) ([]os.DirEntry, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	if sorted {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name() < entries[j].Name()
		})
	}
	return entries, nil
}
