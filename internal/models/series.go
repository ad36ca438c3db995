package models

// HighlightMarker prefixes the label of the bucket covering the current
// day (or month in year mode).
const HighlightMarker = "● "

// Series is the chart-ready result of aggregating access events.
// Labels and Values are parallel and ordered chronologically.
type Series struct {
	Labels    []string
	Values    []int
	Total     int
	Highlight int // index of the marked label, -1 when none
}

// Empty reports whether the series has no buckets.
func (s Series) Empty() bool {
	return len(s.Labels) == 0
}

// Bucket is one labelled count of a series.
type Bucket struct {
	Label string
	Count int
}

// Buckets returns the series as label/count pairs.
func (s Series) Buckets() []Bucket {
	out := make([]Bucket, len(s.Labels))
	for i, label := range s.Labels {
		out[i] = Bucket{Label: label, Count: s.Values[i]}
	}
	return out
}
