// Package download writes the JP2 tiles of a mission to disk, one request at a time.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"pva-downloader/metrics"
)

// TileFetcher streams the JP2 body of one tile.
type TileFetcher interface {
	FetchTile(ctx context.Context, missionID, tileID string) (io.ReadCloser, error)
}

type Downloader struct {
	Fetcher TileFetcher
	// Root is the directory holding one sub-directory per mission.
	Root string
	// Delay is waited after every tile, whatever the request took.
	Delay time.Duration
	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
	Metrics  *metrics.Recorder
}

// ErrBadID is returned for a mission or tile id that is not a single path element.
var ErrBadID = errors.New("id is not a plain file name")

func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.Contains(id, "..") ||
		strings.ContainsAny(id, `/\`) || filepath.Base(id) != id || filepath.Clean(id) != id {
		return fmt.Errorf("%w: %q", ErrBadID, id)
	}
	return nil
}

// Dir returns (and creates) <Root>/<missionID>.
func (d *Downloader) Dir(missionID string) (string, error) {
	if err := checkID(missionID); err != nil {
		return "", err
	}
	dir := filepath.Join(d.Root, missionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// Download fetches every tile in order into <Root>/<missionID>/<tileID>.jp2,
// overwriting existing files. The first failure stops the batch; files already
// written stay.
func (d *Downloader) Download(ctx context.Context, tileIDs []string, missionID string) error {
	dir, err := d.Dir(missionID)
	if err != nil {
		return err
	}
	for _, id := range tileIDs {
		if err := checkID(id); err != nil {
			return fmt.Errorf("tile of %s: %w", missionID, err)
		}
	}

	var bar *progressbar.ProgressBar
	if d.Progress != nil {
		bar = progressbar.NewOptions(len(tileIDs),
			progressbar.OptionSetWriter(d.Progress),
			progressbar.OptionSetDescription(missionID),
			progressbar.OptionShowCount(),
		)
	}

	for _, id := range tileIDs {
		path := filepath.Join(dir, id+".jp2")
		t := time.Now()
		n, err := d.fetch(ctx, missionID, id, path)
		if err != nil {
			return err
		}
		log.Debugf("Wrote %s (%d bytes) in %v", path, n, time.Since(t))
		d.Metrics.TileDownloaded(n)
		if bar != nil {
			bar.Add(1)
		}

		if err := sleep(ctx, d.Delay); err != nil {
			return err
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return nil
}

func (d *Downloader) fetch(ctx context.Context, missionID, tileID, path string) (int64, error) {
	body, err := d.Fetcher.FetchTile(ctx, missionID, tileID)
	if err != nil {
		return 0, fmt.Errorf("download %s/%s: %w", missionID, tileID, err)
	}
	defer body.Close()

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("open %s for writing: %w", path, err)
	}
	n, err := io.Copy(f, body)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", path, err)
	}
	return n, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
