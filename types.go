package main

// OutcomeKind classifies a single checksum attempt.
type OutcomeKind int

const (
	// NotAFile means the path is missing or is not a regular file.
	NotAFile OutcomeKind = iota
	// PermissionDenied means the file exists but could not be read.
	PermissionDenied
	// Hash means the file was read to the end and Sum holds its CRC32.
	Hash
)

func (k OutcomeKind) String() string {
	switch k {
	case Hash:
		return "hash"
	case PermissionDenied:
		return "permission denied"
	default:
		return "not a file"
	}
}

// Outcome is the result of checksumming one path.
// Sum is only meaningful when Kind is Hash; an empty file is Hash with Sum 0.
type Outcome struct {
	Kind OutcomeKind
	Sum  uint32
}

// FileResult holds one processed input ready for rendering.
type FileResult struct {
	Path        string // Path as matched by the glob
	DisplayName string
	Outcome     Outcome
}

// Options controls how results are displayed.
type Options struct {
	Verbose          int  // -v count, 0 means off
	OmitPath         bool // Ignored when Verbose > 0
	RespectGitignore bool
}

// Summary holds aggregated counts for one run.
type Summary struct {
	Processed int
	Hashed    int
	Denied    int
}
