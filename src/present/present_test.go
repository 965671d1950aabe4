package present

import (
	"QuickToilet/src/types"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalkingMinutes(t *testing.T) {
	e := DefaultEstimator()
	assert.Equal(t, 1, e.Minutes(0))
	assert.Equal(t, 1, e.Minutes(80))
	assert.Equal(t, 17, e.Minutes(1000))

	straight := WalkingEstimator{PathFactor: 1.0, MetersPerMinute: 80}
	assert.Equal(t, 13, straight.Minutes(1000))
}

func TestWalkingMinutesPrefersRoute(t *testing.T) {
	e := DefaultEstimator()
	routed := 4
	assert.Equal(t, 4, e.WalkingMinutes(types.Place{Distance: 1000, WalkingDurationMinutes: &routed}))
	assert.Equal(t, 17, e.WalkingMinutes(types.Place{Distance: 1000}))
}

func TestShortAddress(t *testing.T) {
	cases := map[string]string{
		"日本、〒160-0022 東京都新宿区新宿3丁目38": "新宿区新宿3丁目38",
		"日本、〒2310023 神奈川県横浜市中区":     "横浜市中区",
		"東京都渋谷区神南1丁目":               "渋谷区神南1丁目",
		"  大阪府大阪市北区  ":               "大阪市北区",
		"":                          "",
		"1600 Amphitheatre Pkwy":    "1600 Amphitheatre Pkwy",
	}
	for in, want := range cases {
		assert.Equal(t, want, ShortAddress(in), in)
	}
}

func TestNavigationURL(t *testing.T) {
	iphone := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"
	android := "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile"

	assert.Equal(t, "https://maps.apple.com/?daddr=35.6895,139.6917", NavigationURL(iphone, 35.6895, 139.6917))
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=35.6895,139.6917", NavigationURL(android, 35.6895, 139.6917))
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=-33.5,151", NavigationURL("", -33.5, 151))
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "910m", FormatDistance(910))
	assert.Equal(t, "1.5km", FormatDistance(1500))
}
