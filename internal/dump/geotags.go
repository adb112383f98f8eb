package dump

import (
	"fmt"
	"io"
	"strconv"

	"graphipedia/dataimport/internal/wiki"
)

// geo_tags columns used here.
const (
	geoPageID  = 1
	geoGlobe   = 2
	geoPrimary = 3
	geoLat     = 4
	geoLon     = 5
	geoType    = 7
)

// ReadGeotags collects the primary coordinates of every page in a geo_tags
// dump, keyed by page id. The first primary row of a page wins.
func ReadGeotags(r io.Reader) (map[string]wiki.Geotags, error) {
	tags := make(map[string]wiki.Geotags)
	err := Rows(r, "geo_tags", func(row []Value) error {
		if len(row) <= geoType {
			return fmt.Errorf("%w: geo_tags row has %d fields", ErrMalformed, len(row))
		}
		if row[geoPrimary].Text != "1" || row[geoLat].Null || row[geoLon].Null {
			return nil
		}
		pageID := row[geoPageID].Text
		if _, ok := tags[pageID]; ok {
			return nil
		}
		lat, err := strconv.ParseFloat(row[geoLat].Text, 64)
		if err != nil {
			return fmt.Errorf("%w: latitude %q", ErrMalformed, row[geoLat].Text)
		}
		lon, err := strconv.ParseFloat(row[geoLon].Text, 64)
		if err != nil {
			return fmt.Errorf("%w: longitude %q", ErrMalformed, row[geoLon].Text)
		}
		tags[pageID] = wiki.Geotags{
			Globe:     row[geoGlobe].Text,
			Latitude:  lat,
			Longitude: lon,
			Type:      row[geoType].Text,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
