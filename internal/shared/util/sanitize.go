package util

import (
	"path/filepath"
	"strings"
)

const maxFileNameLength = 120

// CleanFileName reduces an uploaded file name to a safe single path
// segment of [A-Za-z0-9._-]. Directories are dropped, leading dots are
// stripped and long names keep their extension. It returns fallback when
// nothing usable is left.
func CleanFileName(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if strings.Trim(out, "_") == "" {
		return fallback
	}
	if len(out) > maxFileNameLength {
		ext := filepath.Ext(out)
		if len(ext) >= maxFileNameLength {
			ext = ""
		}
		out = out[:maxFileNameLength-len(ext)] + ext
	}
	return out
}
