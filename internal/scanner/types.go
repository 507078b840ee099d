// Package scanner enumerates the files eligible for indexing under a
// project root: regular files under the size cap, outside any denylisted
// directory, with an allowlisted extension, not traversing outside the
// root via a symlink.
package scanner

// FileMeta describes one eligible file discovered under a project root.
type FileMeta struct {
	AbsPath   string // absolute filesystem path
	RelPath   string // slash-normalized, relative to the scanned root
	Extension string
	SizeBytes int64
	ModTime   float64 // seconds since epoch, as the store persists it
}

// MaxFileSize is the largest file the scanner will report (1,000,000 bytes).
const MaxFileSize = 1_000_000

// denylistDirs are directory basenames whose subtrees are never descended
// into.
var denylistDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	".venv": true, "venv": true, "env": true,
	".pytest_cache": true, ".mypy_cache": true,
	"dist": true, "build": true, ".next": true, ".nuxt": true,
	"coverage": true, ".turbo": true, "target": true, ".gradle": true,
	"out": true, "classes": true, "bin": true, "obj": true,
	".vs": true, "packages": true, "vendor": true, ".bundle": true,
	"tmp": true, "temp": true, "logs": true, ".cache": true,
}

// allowlistExt are the extensions the scanner reports.
var allowlistExt = map[string]bool{
	// source
	".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".go": true, ".rs": true, ".java": true, ".cpp": true, ".c": true,
	".rb": true, ".php": true, ".cs": true, ".swift": true,
	// markup / config
	".html": true, ".css": true, ".scss": true, ".json": true,
	".yaml": true, ".yml": true, ".toml": true, ".md": true,
	".txt": true, ".sh": true,
}

// IsDenylistedDir reports whether a directory basename is excluded from
// descent.
func IsDenylistedDir(basename string) bool {
	return denylistDirs[basename]
}

// IsAllowlistedExt reports whether an extension is eligible for scanning.
func IsAllowlistedExt(ext string) bool {
	return allowlistExt[ext]
}
