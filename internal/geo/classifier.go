// Package geo assigns a region and country label to station coordinates.
//
// Classification is a first-match scan over two ordered rule tables, one for
// regions and one for countries. Boxes of neighbouring areas overlap; the
// entry listed earlier wins, so smaller or more specific boxes are listed
// before the larger ones they overlap.
package geo

import "math"

// Region labels.
const (
	RegionEurope       = "Europe"
	RegionNorthAmerica = "North America"
	RegionSouthAmerica = "South America"
	RegionAsia         = "Asia"
	RegionAfrica       = "Africa"
	RegionAustralia    = "Australia"
	RegionOther        = "Other"
)

// CountryUnknown is returned when no country box matches.
const CountryUnknown = "Unknown"

// Box is an inclusive latitude/longitude rectangle.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point lies inside the box, edges included.
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Rule maps a box to a label.
type Rule struct {
	Label string
	Box   Box
}

// Result is the outcome of classifying one coordinate pair.
type Result struct {
	Region  string `json:"region"`
	Country string `json:"country"`
}

// Classifier evaluates region and country rules independently.
type Classifier struct {
	regions   []Rule
	countries []Rule
}

// NewClassifier builds a classifier from ordered rule tables.
func NewClassifier(regions, countries []Rule) *Classifier {
	return &Classifier{regions: regions, countries: countries}
}

// Default is the classifier built from the package rule tables.
var Default = NewClassifier(regionRules, countryRules)

// Classify labels a coordinate pair with the default rule tables.
func Classify(lat, lon float64) Result {
	return Default.Classify(lat, lon)
}

// ClassifyPtr is Classify for optional coordinates. A missing latitude or
// longitude yields Other/Unknown.
func ClassifyPtr(lat, lon *float64) Result {
	if lat == nil || lon == nil {
		return unclassified()
	}
	return Default.Classify(*lat, *lon)
}

// Classify returns the first matching region and country. (0,0), NaN and
// out-of-range coordinates are never classified.
func (c *Classifier) Classify(lat, lon float64) Result {
	if !usable(lat, lon) {
		return unclassified()
	}
	return Result{
		Region:  firstMatch(c.regions, lat, lon, RegionOther),
		Country: firstMatch(c.countries, lat, lon, CountryUnknown),
	}
}

func firstMatch(rules []Rule, lat, lon float64, fallback string) string {
	for _, r := range rules {
		if r.Box.Contains(lat, lon) {
			return r.Label
		}
	}
	return fallback
}

// usable rejects the null island placeholder the provider sends for
// stations with no fix, as well as values outside WGS-84 bounds.
func usable(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	if lat == 0 && lon == 0 {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func unclassified() Result {
	return Result{Region: RegionOther, Country: CountryUnknown}
}

// Regions lists every region label in display order, Other last.
func Regions() []string {
	return []string{
		RegionEurope,
		RegionNorthAmerica,
		RegionAsia,
		RegionAfrica,
		RegionAustralia,
		RegionSouthAmerica,
		RegionOther,
	}
}

// Countries lists every supported country label without duplicates, in
// rule-table order.
func Countries() []string {
	seen := make(map[string]bool, len(countryRules))
	out := make([]string, 0, len(countryRules))
	for _, r := range countryRules {
		if seen[r.Label] {
			continue
		}
		seen[r.Label] = true
		out = append(out, r.Label)
	}
	return out
}
