package repository

import (
	"fmt"
	"os"

	"github.com/rocketscienceinc/snakerunner/internal/entity"
)

type SummaryFile struct {
	path string
}

func NewSummaryFile(path string) *SummaryFile {
	return &SummaryFile{path: path}
}

// Save replaces the file contents with summary.
func (that *SummaryFile) Save(summary entity.MatchSummary) error {
	if err := os.WriteFile(that.path, []byte(summary.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write match summary: %w", err)
	}

	return nil
}
