package quilt

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var suffixPattern = regexp.MustCompile(`_qs(\d+)x(\d+)a(\d*\.?\d+)`)

// Suffix encodes a quilt layout the way Looking Glass players expect it in
// file names, e.g. "_qs8x6a0.75". aspect is the display's native aspect.
func Suffix(columns, rows int, aspect float64) string {
	return "_qs" + strconv.Itoa(columns) + "x" + strconv.Itoa(rows) + "a" + strconv.FormatFloat(aspect, 'f', -1, 32)
}

// ParseSuffix extracts the layout encoded by Suffix from a file name.
func ParseSuffix(name string) (columns, rows int, aspect float64, ok bool) {
	m := suffixPattern.FindAllStringSubmatch(filepath.Base(name), -1)
	if len(m) == 0 {
		return 0, 0, 0, false
	}
	last := m[len(m)-1]
	var err error
	if columns, err = strconv.Atoi(last[1]); err != nil {
		return 0, 0, 0, false
	}
	if rows, err = strconv.Atoi(last[2]); err != nil {
		return 0, 0, 0, false
	}
	if aspect, err = strconv.ParseFloat(last[3], 64); err != nil {
		return 0, 0, 0, false
	}
	return columns, rows, aspect, true
}

// AutoCorrectPath makes outputName carry exactly one layout suffix placed
// right before ext. An empty name becomes "output".
func AutoCorrectPath(outputName string, columns, rows int, aspect float64, ext string) string {
	if outputName == "" {
		outputName = "output"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	ending := Suffix(columns, rows, aspect)
	out := strings.ReplaceAll(outputName, ending, "")
	if ext != "" && !strings.HasSuffix(out, ext) {
		out = strings.TrimSuffix(out, filepath.Ext(out)) + ext
	}
	dot := strings.LastIndex(out, ".")
	if dot < 0 || strings.ContainsAny(out[dot:], `/\`) {
		return out + ending
	}
	return out[:dot] + ending + out[dot:]
}

// SettingsFromSuffix rebuilds quilt settings for an image of the given size
// whose name carries a layout suffix. All tiles are assumed to hold views.
func SettingsFromSuffix(name string, width, height int) (Settings, bool) {
	cols, rows, aspect, ok := ParseSuffix(name)
	if !ok || cols <= 0 || rows <= 0 {
		return Settings{}, false
	}
	return New(width, height, cols, rows, cols*rows, aspect, false), true
}
