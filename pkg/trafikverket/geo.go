package trafikverket

import (
	"regexp"
	"strconv"
)

var wgs84NumberRegex = regexp.MustCompile(`-?\d+(\.\d+)?`)

// ParseWGS84 converts the feeds "POINT (lon lat)" text encoding into a
// latitude/longitude pair. Returns ok=false when the input is empty or
// contains fewer than two numeric tokens; callers must check ok before use.
func ParseWGS84(wgs84 string) (latitude float64, longitude float64, ok bool) {
	if wgs84 == "" {
		return 0, 0, false
	}

	matches := wgs84NumberRegex.FindAllString(wgs84, -1)
	if len(matches) < 2 {
		return 0, 0, false
	}

	// Source order is longitude first
	longitude, lonErr := strconv.ParseFloat(matches[0], 64)
	latitude, latErr := strconv.ParseFloat(matches[1], 64)
	if lonErr != nil || latErr != nil {
		return 0, 0, false
	}

	return latitude, longitude, true
}
