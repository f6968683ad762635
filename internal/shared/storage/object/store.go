// Package object archives uploaded sidewall photos for later review.
package object

import (
	"context"
	"path"

	"tirescan-backend/internal/shared/util"
)

// Photo is one uploaded image tied to the analysis that read it.
type Photo struct {
	AnalysisID  string
	FileName    string
	ContentType string
	Data        []byte
}

// Key is the storage key: analyses/<analysis id>/<cleaned file name>.
func (p Photo) Key() string {
	return path.Join("analyses", p.AnalysisID, util.CleanFileName(p.FileName, "photo"))
}

// Archive persists photos and returns the key written.
type Archive interface {
	Save(ctx context.Context, p Photo) (string, error)
}
