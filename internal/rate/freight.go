package rate

// Class is an NMFC freight class ("50" through "500"). Lower classes are
// denser, cheaper-per-weight freight. Kept as a string because classes
// like 77.5 and 92.5 are not integers.
type Class string

// Tier selects a service level in the LTL rate matrix.
type Tier string

const (
    TierStandard Tier = "standard"
    TierExpress  Tier = "express"
    TierPremium  Tier = "premium"
)

// FreightClassifier maps density to the published class ladder and looks
// up per-hundredweight base rates.
type FreightClassifier struct {
    table FreightTable
}

func NewFreightClassifier(table FreightTable) *FreightClassifier {
    return &FreightClassifier{table: table}
}

// Classify walks the descending-threshold ladder and returns the first
// class whose minimum density the shipment meets. The ladder always ends
// at a zero threshold, so every density classifies.
func (c *FreightClassifier) Classify(density float64) Class {
    for _, step := range c.table.Ladder {
        if density >= step.MinDensity {
            return step.Class
        }
    }
    return c.table.Ladder[len(c.table.Ladder)-1].Class
}

// RateFor returns the cents-per-hundredweight base rate for a class and
// tier. An unmatched class falls back to the mid-table default row so
// the pipeline always produces a number.
func (c *FreightClassifier) RateFor(class Class, tier Tier) int64 {
    row, ok := c.table.Rates[class]
    if !ok {
        row = c.table.Rates[c.table.FallbackClass]
    }
    switch tier {
    case TierExpress:
        return row.Express
    case TierPremium:
        return row.Premium
    default:
        return row.Standard
    }
}
