package model

// Annotation is a single finding anchored to a page location
type Annotation struct {
	ID          string      `json:"id"`
	Kind        Kind        `json:"kind"`
	Message     string      `json:"message"`
	Page        int         `json:"page"`           // 1-based
	BoundingBox BoundingBox `json:"bounding_box"`   // Normalized 0-100 space
	Rule        string      `json:"rule,omitempty"` // Which rule fired (e.g., "suggestion:itemize")
}

// Kind classifies an annotation
type Kind string

const (
	KindSuggestion Kind = "suggestion" // Opportunity the filer may be missing
	KindWarning    Kind = "warning"    // Missing or incomplete information
	KindRedFlag    Kind = "redflag"    // Higher-severity finding from a detector
)

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindSuggestion, KindWarning, KindRedFlag:
		return true
	}
	return false
}

// BoundingBox locates an annotation on a page in a normalized 0-100 space.
// Without layout analysis these are placeholder regions.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// IsZero reports whether the box was never set
func (b BoundingBox) IsZero() bool {
	return b == BoundingBox{}
}

// Clamp keeps the box inside the 0-100 page space
func (b BoundingBox) Clamp() BoundingBox {
	b.X = clamp(b.X, 0, 100)
	b.Y = clamp(b.Y, 0, 100)
	b.Width = clamp(b.Width, 0, 100-b.X)
	b.Height = clamp(b.Height, 0, 100-b.Y)
	return b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CountByKind tallies annotations per kind
func CountByKind(annotations []Annotation) Counts {
	var c Counts
	for _, a := range annotations {
		switch a.Kind {
		case KindSuggestion:
			c.Suggestions++
		case KindWarning:
			c.Warnings++
		case KindRedFlag:
			c.RedFlags++
		}
	}
	return c
}

// Counts holds per-kind annotation totals
type Counts struct {
	Suggestions int `json:"suggestions"`
	Warnings    int `json:"warnings"`
	RedFlags    int `json:"redflags"`
}

// Total returns the number of annotations counted
func (c Counts) Total() int {
	return c.Suggestions + c.Warnings + c.RedFlags
}
