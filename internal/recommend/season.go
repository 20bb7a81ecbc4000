package recommend

import (
	"strings"
	"time"
)

// Season is one of the four calendar seasons.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// allSeasons is the tag an item carries when it suits every season.
const allSeasons = "all"

// ParseSeason normalizes a season name.  "fall" is accepted for autumn.
func ParseSeason(s string) (Season, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spring":
		return Spring, true
	case "summer":
		return Summer, true
	case "autumn", "fall":
		return Autumn, true
	case "winter":
		return Winter, true
	}
	return "", false
}

// normalizeSeasonTag maps an item's season tag to a Season or "all".
func normalizeSeasonTag(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	switch t {
	case "all", "all seasons", "all-season", "all-seasons", "any":
		return allSeasons
	}
	if s, ok := ParseSeason(t); ok {
		return string(s)
	}
	return t
}

// SeasonFor returns the northern-hemisphere calendar season of t.
func SeasonFor(t time.Time) Season {
	switch t.Month() {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Autumn
	}
}

// SeasonFromWeather maps a coarse weather word to the season whose
// clothes suit it.
func SeasonFromWeather(w string) (Season, bool) {
	switch strings.ToLower(strings.TrimSpace(w)) {
	case "hot", "sunny", "warm":
		return Summer, true
	case "cold", "snow", "freezing":
		return Winter, true
	case "mild":
		return Spring, true
	case "rain", "rainy", "cool":
		return Autumn, true
	}
	return "", false
}

// SeasonFromTemperature maps a measured temperature in Celsius.  The
// in-between band resolves to spring in the first half of the year and
// autumn in the second.
func SeasonFromTemperature(tempC float64, month time.Month) Season {
	switch {
	case tempC < 10:
		return Winter
	case tempC > 25:
		return Summer
	case month <= time.June:
		return Spring
	default:
		return Autumn
	}
}
