package rate

import "strings"

// Destination is where a shipment is headed. Used only for rating,
// never mutated.
type Destination struct {
    City        string `json:"city"`
    Region      string `json:"region"`
    Residential bool   `json:"residential"`
    PostalCode  string `json:"postal_code,omitempty"`
}

// DistanceRater maps a destination to a dimensionless pricing factor.
// A full routing computation is out of scope; the two-tier lookup with a
// safe default keeps behavior bounded for destinations never seen before.
type DistanceRater struct {
    table DistanceTable
}

func NewDistanceRater(table DistanceTable) *DistanceRater {
    return &DistanceRater{table: table}
}

// Factor returns the geographic cost multiplier for dest: exact
// case-insensitive city match, then region fallback, then the default.
func (r *DistanceRater) Factor(dest Destination) float64 {
    if f, ok := r.table.Cities[strings.ToLower(strings.TrimSpace(dest.City))]; ok {
        return f
    }
    if f, ok := r.table.Regions[strings.ToUpper(strings.TrimSpace(dest.Region))]; ok {
        return f
    }
    return r.table.Default
}
