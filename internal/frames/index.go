// Package frames finds the rendered views that make up each quilt frame and
// reads and writes the images involved.
package frames

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Frame is one quilt's worth of view images, in view order.
type Frame struct {
	Name  string
	Dir   string
	Views []string
}

var trailingNumber = regexp.MustCompile(`(\d+)\D*$`)

// IsImage reports whether path has an extension LoadImage can decode.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".tga", ".webp":
		return true
	}
	return false
}

// Scan finds the frames under dir. A dir holding view images directly is a
// single frame; otherwise every subdirectory holding images is one frame.
// Frames are sorted by name.
func Scan(dir string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("frames: scan %s: %w", dir, err)
	}

	if views := viewFiles(dir, entries); len(views) > 0 {
		return []Frame{{Name: filepath.Base(filepath.Clean(dir)), Dir: dir, Views: views}}, nil
	}

	var out []Frame
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		subEntries, err := os.ReadDir(sub)
		if err != nil {
			return nil, fmt.Errorf("frames: scan %s: %w", sub, err)
		}
		if views := viewFiles(sub, subEntries); len(views) > 0 {
			out = append(out, Frame{Name: e.Name(), Dir: sub, Views: views})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("frames: no view images under %s", dir)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// viewFiles returns the image files among entries ordered by the last number
// in their names; names without a number go last.
func viewFiles(dir string, entries []os.DirEntry) []string {
	type view struct {
		path   string
		name   string
		num    int
		hasNum bool
	}
	var views []view
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		v := view{path: filepath.Join(dir, e.Name()), name: e.Name()}
		if m := trailingNumber.FindStringSubmatch(stem); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				v.num, v.hasNum = n, true
			}
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if a.hasNum != b.hasNum {
			return a.hasNum
		}
		if a.num != b.num {
			return a.num < b.num
		}
		return a.name < b.name
	})
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.path
	}
	return out
}
