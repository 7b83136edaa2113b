package ports

import "context"

// Extraction is the structured result of reading candidate material.
type Extraction struct {
	// Profile is a prose summary of the candidate's background.
	Profile string

	// TargetRole is the role the candidate is applying for, when the
	// material declares one.
	TargetRole string
}

// Extractor turns raw candidate material into an Extraction. Implementations
// decide how much structure to recover; callers fall back to placeholders
// when fields come back empty.
type Extractor interface {
	Extract(ctx context.Context, material string) (*Extraction, error)
}
