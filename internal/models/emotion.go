package models

// EmotionKey identifies one of the seven canonical emotion categories.
// The string value is the CSV column carrying the subject's percentage.
type EmotionKey string

const (
	EmotionHappy     EmotionKey = "duygu_mutlu_%"
	EmotionAngry     EmotionKey = "duygu_kizgin_%"
	EmotionDisgust   EmotionKey = "duygu_igrenme_%"
	EmotionFear      EmotionKey = "duygu_korku_%"
	EmotionSad       EmotionKey = "duygu_uzgun_%"
	EmotionSurprised EmotionKey = "duygu_saskin_%"
	EmotionNeutral   EmotionKey = "duygu_dogal_%"
)

// EmotionKeys is the canonical ordering. Charts and prompts iterate this slice,
// never the maps, so output ordering is stable.
var EmotionKeys = []EmotionKey{
	EmotionHappy,
	EmotionAngry,
	EmotionDisgust,
	EmotionFear,
	EmotionSad,
	EmotionSurprised,
	EmotionNeutral,
}

var emotionLabels = map[EmotionKey]string{
	EmotionHappy:     "Mutlu",
	EmotionAngry:     "Kızgın",
	EmotionDisgust:   "İğrenme",
	EmotionFear:      "Korku",
	EmotionSad:       "Üzgün",
	EmotionSurprised: "Şaşkın",
	EmotionNeutral:   "Doğal",
}

var emotionColors = map[EmotionKey]string{
	EmotionHappy:     "#d4eac8",
	EmotionAngry:     "#e5b9b5",
	EmotionDisgust:   "#d3cdd7",
	EmotionFear:      "#a9b4c2",
	EmotionSad:       "#b7d0e2",
	EmotionSurprised: "#fdeac9",
	EmotionNeutral:   "#d8d8d8",
}

// FallbackColor is used for any label without a color table entry.
const FallbackColor = "#cccccc"

// Column returns the CSV column name for the subject's value.
func (k EmotionKey) Column() string {
	return string(k)
}

// AverageColumn returns the CSV column name for the cohort average.
func (k EmotionKey) AverageColumn() string {
	return "avg_" + string(k)
}

// Label returns the display name used in charts and prompts.
func (k EmotionKey) Label() string {
	if label, ok := emotionLabels[k]; ok {
		return label
	}
	return "Bilinmeyen"
}

// Color returns the chart fill color for this emotion.
func (k EmotionKey) Color() string {
	if color, ok := emotionColors[k]; ok {
		return color
	}
	return FallbackColor
}

// EmotionRecord holds the per-emotion percentages for one subject, with an
// optional parallel map of cohort averages. Values are in [0,100]. A key absent
// from Values is treated as missing, not zero.
type EmotionRecord struct {
	Values   map[EmotionKey]float64 `json:"values"`
	Averages map[EmotionKey]float64 `json:"averages,omitempty"`
}

// Value returns the subject's percentage and whether the key is present.
func (r EmotionRecord) Value(k EmotionKey) (float64, bool) {
	v, ok := r.Values[k]
	return v, ok
}

// Average returns the cohort average for the key, defaulting to zero.
func (r EmotionRecord) Average(k EmotionKey) float64 {
	return r.Averages[k]
}

// HasAverages reports whether any cohort averages were supplied.
func (r EmotionRecord) HasAverages() bool {
	return len(r.Averages) > 0
}
