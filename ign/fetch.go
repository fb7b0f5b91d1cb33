package ign

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
)

// get issues a GET through the retrying client and returns the body of a 200
// response. The caller closes it.
func (c *Client) get(ctx context.Context, url string, referer bool) (io.ReadCloser, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if referer && c.opts.Referer != "" {
		req.Header.Set("Referer", c.opts.Referer)
	}

	log.Debugf("GET %s", url)
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		defer res.Body.Close()
		buf := new(strings.Builder)
		io.Copy(buf, io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("GET %s: %v: %q", url, res.Status, buf.String())
	}
	return res.Body, nil
}

func (c *Client) KMLURL(ref string) (string, error) {
	return c.kmlURL.Expand(map[string]interface{}{"path": ref})
}

func (c *Client) TileURL(missionID, tileID string) (string, error) {
	return c.tileURL.Expand(map[string]interface{}{
		"mission": missionID,
		"tile":    tileID,
	})
}

// FetchKML fetches one document of a mission's KML tree. ref is relative to the KML base.
func (c *Client) FetchKML(ctx context.Context, ref string) (io.ReadCloser, error) {
	u, err := c.KMLURL(ref)
	if err != nil {
		return nil, fmt.Errorf("expand KML URL for %q: %w", ref, err)
	}
	return c.get(ctx, u, true)
}

// FetchTile streams the JP2 image of one tile.
func (c *Client) FetchTile(ctx context.Context, missionID, tileID string) (io.ReadCloser, error) {
	u, err := c.TileURL(missionID, tileID)
	if err != nil {
		return nil, fmt.Errorf("expand tile URL for %s/%s: %w", missionID, tileID, err)
	}
	return c.get(ctx, u, true)
}
