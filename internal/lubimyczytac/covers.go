package lubimyczytac

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"shelfsync/internal/catalog"
	"shelfsync/internal/fileutil"
)

// coverMaxWidth caps stored cover width; originals can be much larger.
const coverMaxWidth = 500

// DownloadCovers fetches cover images for books into dir, one file per
// source id, skipping covers already on disk. Failures are logged and
// counted, never fatal.
func (c *Client) DownloadCovers(ctx context.Context, books []catalog.Book, dir string) int {
	var wg sync.WaitGroup
	downloaded := make(chan bool, len(books))

	for _, book := range books {
		if book.CoverURL == "" {
			continue
		}
		wg.Add(1)
		go func(book catalog.Book) {
			defer wg.Done()
			path := filepath.Join(dir, book.SourceID+".jpg")
			fresh, err := fileutil.DownloadCover(ctx, c.httpClient, book.CoverURL, path, coverMaxWidth)
			if err != nil {
				slog.Warn("Failed to download cover", "source_id", book.SourceID, "title", book.Title, "error", err)
				return
			}
			downloaded <- fresh
		}(book)
	}
	wg.Wait()
	close(downloaded)

	var fresh int
	for wasNew := range downloaded {
		if wasNew {
			fresh++
		}
	}
	if fresh > 0 {
		slog.Info("Downloaded covers", "count", fresh, "dir", dir)
	}
	return fresh
}
