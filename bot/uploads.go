package bot

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// uploadDir creates a private folder under parent for one upload, so
// overlapping uploads of the same file never share a path.
func uploadDir(parent string) (string, error) {
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", errors.Wrap(err, "[uploadDir] create folder")
	}
	dir, err := os.MkdirTemp(parent, ".upload-*")
	if err != nil {
		return "", errors.Wrap(err, "[uploadDir] create upload folder")
	}
	return dir, nil
}

// keepUpload moves a processed upload to dst, replacing the previous copy.
func keepUpload(src, dst string) {
	if err := os.Rename(src, dst); err != nil {
		log.Warn().Err(err).Str("file", dst).Msg("Could not keep uploaded file")
	}
}
