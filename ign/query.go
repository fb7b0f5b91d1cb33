package ign

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

var ErrMissingCount = errors.New("response has no numberOfFeatures")

// cqlFilter builds the spatial filter. It is appended to the query string as is
// since the polygon already uses "+" for spaces; only the layer id needs escaping.
func (c *Client) cqlFilter(polygon string) string {
	return "demat_layer_id+=+'" + url.QueryEscape(c.opts.LayerID) + "'+and+INTERSECTS(the_geom,POLYGON((" + polygon + ")))"
}

func (c *Client) searchURL(polygon string, v url.Values) string {
	return c.opts.SearchURL + "?cql_filter=" + c.cqlFilter(polygon) + "&" + v.Encode()
}

// CountMissions asks the search service how many missions intersect the polygon.
func (c *Client) CountMissions(ctx context.Context, polygon string) (int, error) {
	v := make(url.Values)
	v.Set("outputFormat", "json")
	v.Set("request", "GetFeature")
	v.Set("resultType", "hits")
	v.Set("typeName", c.opts.TypeName)
	v.Set("version", "1.1.0")

	body, err := c.get(ctx, c.searchURL(polygon, v), false)
	if err != nil {
		return 0, fmt.Errorf("count missions: %w", err)
	}
	defer body.Close()

	var hits hitsResponse
	if err := xml.NewDecoder(body).Decode(&hits); err != nil {
		return 0, fmt.Errorf("count missions: decode: %w", err)
	}
	if hits.NumberOfFeatures == "" {
		return 0, ErrMissingCount
	}
	n, err := strconv.Atoi(hits.NumberOfFeatures)
	if err != nil {
		return 0, fmt.Errorf("count missions: bad numberOfFeatures %q: %w", hits.NumberOfFeatures, err)
	}
	log.Debugf("%d missions intersect %s", n, polygon)
	return n, nil
}

// ListMissions returns the missions with JP2 imagery intersecting the polygon, in
// the order the service sorted them (pv_date, kml_layer_id).
func (c *Client) ListMissions(ctx context.Context, polygon string) ([]Mission, error) {
	v := make(url.Values)
	v.Set("outputFormat", "json")
	v.Set("propertyName", "jp2,kml_layer_id,pv_date,title")
	v.Set("request", "GetFeature")
	v.Set("sortBy", "pv_date,kml_layer_id")
	v.Set("typeName", c.opts.TypeName)
	v.Set("version", "1.1.0")

	body, err := c.get(ctx, c.searchURL(polygon, v), false)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("list missions: read body: %w", err)
	}
	return parseMissions(raw)
}

func parseMissions(raw []byte) ([]Mission, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("list missions: response is not valid JSON")
	}
	features := gjson.GetBytes(raw, "features")
	if !features.IsArray() {
		return nil, fmt.Errorf("list missions: response has no features array")
	}

	var missions []Mission
	var perr error
	i := -1
	features.ForEach(func(_, f gjson.Result) bool {
		i++
		props := f.Get("properties")
		if !props.Get("jp2").Bool() {
			return true
		}
		id := props.Get("kml_layer_id")
		date := props.Get("pv_date")
		if !id.Exists() || !date.Exists() {
			perr = fmt.Errorf("list missions: feature %d is missing kml_layer_id or pv_date", i)
			return false
		}
		missions = append(missions, Mission{
			ID:    id.String(),
			Date:  date.String(),
			Title: props.Get("title").String(),
			JP2:   true,
		})
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return missions, nil
}
