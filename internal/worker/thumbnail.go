package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"filedrive.dev/api/internal/apperr"
	"filedrive.dev/api/internal/queue"
)

var thumbnailWidths = []int{500, 250, 100}

// ProcessThumbnail renders the fixed-width derivatives for one image job.
// Each width is rendered independently: a single failed width is logged and
// skipped, and the job only fails when the source can't be read or no width
// rendered at all. Derivatives land next to the source as <path>_<width>.
func (w *Worker) ProcessThumbnail(ctx context.Context, payload []byte) error {
	var job queue.ThumbnailJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("malformed thumbnail payload: %w", err)
	}
	if job.FileID == "" {
		return errors.New("missing fileId")
	}
	if job.UserID == "" {
		return errors.New("missing userId")
	}

	fileID, err := primitive.ObjectIDFromHex(job.FileID)
	if err != nil {
		return fmt.Errorf("bad fileId %q: %w", job.FileID, err)
	}
	userID, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return fmt.Errorf("bad userId %q: %w", job.UserID, err)
	}

	// Re-read the record: the file may have been deleted between enqueue and
	// processing, and the lookup is owner-scoped like every other read.
	file, err := w.files.GetForUser(ctx, fileID, userID)
	if err != nil {
		return fmt.Errorf("file lookup failed: %w", err)
	}
	if file == nil {
		return apperr.NotFoundErr("File not found")
	}

	src, format, err := decodeImage(file.LocalPath)
	if err != nil {
		return fmt.Errorf("decode %s: %w", file.LocalPath, err)
	}

	rendered := 0
	for _, width := range thumbnailWidths {
		dst := fmt.Sprintf("%s_%d", file.LocalPath, width)
		if err := writeThumbnail(src, format, width, dst); err != nil {
			w.logger.Errorf("Thumbnail %dpx for file %s failed: %s", width, job.FileID, err)
			continue
		}
		rendered++
	}
	if rendered == 0 {
		return fmt.Errorf("no thumbnail rendered for file %s", job.FileID)
	}

	w.logger.Infof("Rendered %d/%d thumbnails for file %s", rendered, len(thumbnailWidths), job.FileID)
	return nil
}

func decodeImage(path string) (image.Image, imaging.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	// Stored files carry no extension, so sniff the format from the bytes
	// and keep it for the derivatives.
	img, name, err := image.Decode(f)
	if err != nil {
		return nil, 0, err
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, 0, err
	}
	return img, format, nil
}

func writeThumbnail(src image.Image, format imaging.Format, width int, dst string) error {
	thumb := imaging.Resize(src, width, 0, imaging.Lanczos)

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := imaging.Encode(out, thumb, format); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
