package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DownloadCover downloads a cover image to localPath using the shared HTTP
// client, resizing it down to maxWidth when the original is wider
// (maxWidth <= 0 keeps the original size). It skips the download when the
// file already exists. Returns true if a new file was written.
func DownloadCover(ctx context.Context, client *http.Client, url, localPath string, maxWidth int) (bool, error) {
	if url == "" {
		return false, nil
	}

	if FileExists(localPath) {
		slog.Debug("Cover already exists, skipping download", "path", localPath)
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, url)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return false, fmt.Errorf("failed to decode cover image: %w", err)
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return false, fmt.Errorf("failed to create covers directory: %w", err)
	}

	if err := imaging.Save(img, localPath, imaging.JPEGQuality(85)); err != nil {
		return false, fmt.Errorf("failed to write cover file: %w", err)
	}

	slog.Debug("Downloaded cover", "path", localPath)
	return true, nil
}
