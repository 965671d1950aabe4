package present

import (
	"QuickToilet/src/types"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	countryPrefix    = regexp.MustCompile(`^日本、?\s*`)
	postalCode       = regexp.MustCompile(`〒\d{3}-?\d{4}\s*`)
	prefecturePrefix = regexp.MustCompile(`^(?:東京都|北海道|京都府|大阪府|\p{Han}{2,3}県)\s*`)
	applePlatform    = regexp.MustCompile(`(?i)iphone|ipad|ipod`)
)

// WalkingEstimator turns straight-line meters into walking minutes.
type WalkingEstimator struct {
	PathFactor      float64
	MetersPerMinute float64
}

func DefaultEstimator() WalkingEstimator {
	return WalkingEstimator{PathFactor: 1.35, MetersPerMinute: 80}
}

func (e WalkingEstimator) Minutes(meters int) int {
	return max(1, int(math.Round(float64(meters)*e.PathFactor/e.MetersPerMinute)))
}

// WalkingMinutes prefers the routed duration and falls back to the estimate.
func (e WalkingEstimator) WalkingMinutes(p types.Place) int {
	if p.WalkingDurationMinutes != nil {
		return *p.WalkingDurationMinutes
	}
	return e.Minutes(p.Distance)
}

// ShortAddress drops the country, postal code and prefecture from a Japanese address.
func ShortAddress(formatted string) string {
	s := countryPrefix.ReplaceAllString(strings.TrimSpace(formatted), "")
	s = postalCode.ReplaceAllString(s, "")
	s = prefecturePrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func IsApplePlatform(userAgent string) bool {
	return applePlatform.MatchString(userAgent)
}

func NavigationURL(userAgent string, lat, lng float64) string {
	dest := formatCoord(lat) + "," + formatCoord(lng)
	if IsApplePlatform(userAgent) {
		return "https://maps.apple.com/?daddr=" + dest
	}
	return "https://www.google.com/maps/dir/?api=1&destination=" + dest
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func FormatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", meters)
	}
	return fmt.Sprintf("%.1fkm", float64(meters)/1000)
}
