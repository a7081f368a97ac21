package domain

import (
	"fmt"
	"math"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Validate checks that the point is finite and inside the lat/lon ranges.
func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return fmt.Errorf("coordinates (%v, %v) are not finite", c.Lat, c.Lon)
	}
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range", c.Lon)
	}
	return nil
}

// String renders the point as "lat,lon", the form directions APIs expect.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}
