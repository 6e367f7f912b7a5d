package upload

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// IngestResult is the outcome of handing a finalized object to the video
// platform.
type IngestResult struct {
	VideoID      string
	ThumbnailURL string
}

// Ingester copies a finalized upload into the video platform by its public
// media URL. The object must already be completed; ingestion failures do not
// affect the stored object.
type Ingester interface {
	Ingest(ctx context.Context, key string) (IngestResult, error)
}

// CloudinaryIngester ingests finalized uploads into Cloudinary as video
// assets. Cloudinary fetches the object itself from mediaBaseURL+key, so the
// media host must be publicly reachable.
type CloudinaryIngester struct {
	cld          *cloudinary.Cloudinary
	mediaBaseURL string
	folder       string
}

// NewCloudinaryIngester reads credentials from the CLOUDINARY_URL
// environment variable.
func NewCloudinaryIngester(mediaBaseURL, folder string) (*CloudinaryIngester, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryIngester{
		cld:          cld,
		mediaBaseURL: strings.TrimSuffix(mediaBaseURL, "/"),
		folder:       folder,
	}, nil
}

// Ingest uploads the object at key from the public media host into
// Cloudinary and returns the resulting video id and thumbnail.
func (c *CloudinaryIngester) Ingest(ctx context.Context, key string) (IngestResult, error) {
	if key == "" {
		return IngestResult{}, &IngestionError{Err: fmt.Errorf("empty object key")}
	}

	sourceURL := c.mediaBaseURL + "/" + strings.TrimPrefix(key, "/")
	resp, err := c.cld.Upload.Upload(ctx, sourceURL, uploader.UploadParams{
		ResourceType: "video",
		Folder:       c.folder,
	})
	if err != nil {
		return IngestResult{}, &IngestionError{Key: key, Err: err}
	}
	if resp.Error.Message != "" {
		return IngestResult{}, &IngestionError{Key: key, Err: fmt.Errorf("%s", resp.Error.Message)}
	}

	return IngestResult{
		VideoID:      resp.PublicID,
		ThumbnailURL: thumbnailURL(resp.SecureURL),
	}, nil
}

// thumbnailURL derives a poster frame URL from a Cloudinary video delivery
// URL by swapping the extension for .jpg.
func thumbnailURL(videoURL string) string {
	if videoURL == "" {
		return ""
	}
	if i := strings.LastIndex(videoURL, "."); i > strings.LastIndex(videoURL, "/") {
		return videoURL[:i] + ".jpg"
	}
	return videoURL + ".jpg"
}
