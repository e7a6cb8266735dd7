// Package imagecdn builds references into the third-party car image CDN.
package imagecdn

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultAngle = "01"
	DefaultColor = "white"
)

// Angles are the viewing angles the CDN renders, in rotation order
var Angles = []string{"01", "05", "09", "13", "17", "21", "23", "29"}

// Builder resolves image URLs for one CDN customer
type Builder struct {
	baseURL    string
	customerID string
}

func NewBuilder(baseURL, customerID string) *Builder {
	return &Builder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		customerID: customerID,
	}
}

// URL returns the image for brand/model/year seen from angle in color.
// Empty angle and color fall back to the defaults; year 0 is omitted.
func (b *Builder) URL(brand, model string, year int, angle, color string) string {
	if angle == "" {
		angle = DefaultAngle
	}
	if color == "" {
		color = DefaultColor
	}

	q := url.Values{}
	q.Set("customer", b.customerID)
	q.Set("make", strings.ToLower(brand))
	q.Set("modelFamily", modelFamily(model))
	if year > 0 {
		q.Set("modelYear", strconv.Itoa(year))
	}
	q.Set("angle", angle)
	q.Set("paintDescription", color)
	q.Set("zoomType", "fullscreen")

	return b.baseURL + "/getimage?" + q.Encode()
}

// modelFamily keeps the first word of the model ("M3 COMPETITION" -> "m3"),
// the CDN does not know trim names
func modelFamily(model string) string {
	fields := strings.Fields(strings.ToLower(model))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
