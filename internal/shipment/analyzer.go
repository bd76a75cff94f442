package shipment

import (
    "math"
    "strings"
)

// Kind distinguishes the two packaging models with different billing rules.
type Kind string

const (
    KindPackage Kind = "package"
    KindPallet  Kind = "pallet"
)

// Dimensions describes one item's footprint. Unit accepts "in"/"inch" or
// "ft"/"foot"; when absent, packages are assumed to be measured in inches
// and pallets in feet.
type Dimensions struct {
    Length float64 `json:"length"`
    Width  float64 `json:"width"`
    Height float64 `json:"height"`
    Unit   string  `json:"unit,omitempty"`
}

// Item is one physical unit of a shipment as submitted by the caller.
// Immutable once submitted; missing optional fields are defaulted during
// analysis, never rejected.
type Item struct {
    Weight     float64     `json:"weight,omitempty"`
    Quantity   int         `json:"quantity,omitempty"`
    Dimensions *Dimensions `json:"dimensions,omitempty"`
    // Volume is a trusted precomputed cubic-feet value; when set it is
    // used verbatim instead of the dimensions.
    Volume float64 `json:"volume,omitempty"`
}

// Summary holds the aggregate metrics one rating run derives from a
// shipment. Density is actual weight over total volume in lbs/ft3.
type Summary struct {
    ActualWeight      float64
    DimensionalWeight float64
    BillableWeight    float64
    TotalVolume       float64
    ItemCount         int
    MaxDimension      float64
    Density           float64
}

// dimWeightDivisor is the industry volumetric constant: lbs billed per
// cubic foot of low-density parcel freight.
const dimWeightDivisor = 166.0

// Fallback weights when an item omits its own. Conservative non-zero
// placeholders so downstream division never sees zero.
const (
    defaultPackageWeight = 1.0
    defaultPalletWeight  = 50.0
)

// Analyze reduces a list of items to the shipment's aggregate metrics.
// Pure and total: it never fails, defaulting any missing optional field.
func Analyze(items []Item, kind Kind) Summary {
    var s Summary
    for _, it := range items {
        qty := it.Quantity
        if qty < 1 {
            qty = 1
        }
        w := it.Weight
        if w <= 0 {
            if kind == KindPallet {
                w = defaultPalletWeight
            } else {
                w = defaultPackageWeight
            }
        }
        s.ActualWeight += w * float64(qty)

        vol := it.Volume
        if vol <= 0 {
            var maxAxis float64
            vol, maxAxis = itemVolume(it.Dimensions, kind)
            if maxAxis > s.MaxDimension {
                s.MaxDimension = maxAxis
            }
        }
        s.TotalVolume += vol * float64(qty)
        s.ItemCount += qty
    }

    if kind == KindPallet {
        // LTL is billed on class and actual weight, never dimensional.
        s.DimensionalWeight = s.ActualWeight
    } else {
        s.DimensionalWeight = s.TotalVolume * dimWeightDivisor
    }
    s.BillableWeight = math.Max(s.ActualWeight, s.DimensionalWeight)

    if s.TotalVolume > 0 {
        s.Density = s.ActualWeight / s.TotalVolume
    } else {
        // Degrade to the densest freight class rather than dividing by zero.
        s.Density = math.MaxFloat64
    }
    return s
}

// itemVolume computes cubic feet from dimensions, defaulting missing
// axes (12x8x6 in for packages, 4x4x4 ft for pallets). The returned max
// axis is the largest raw value seen before unit conversion, kept for
// diagnostics.
func itemVolume(d *Dimensions, kind Kind) (volume, maxAxis float64) {
    var dims Dimensions
    if d != nil {
        dims = *d
    }
    if kind == KindPallet {
        fillAxes(&dims, 4, 4, 4)
        if dims.Unit == "" {
            dims.Unit = "ft"
        }
    } else {
        fillAxes(&dims, 12, 8, 6)
        if dims.Unit == "" {
            dims.Unit = "in"
        }
    }
    maxAxis = math.Max(dims.Length, math.Max(dims.Width, dims.Height))
    l, w, h := dims.Length, dims.Width, dims.Height
    if isInches(dims.Unit) {
        l, w, h = l/12, w/12, h/12
    }
    return l * w * h, maxAxis
}

func fillAxes(d *Dimensions, l, w, h float64) {
    if d.Length <= 0 {
        d.Length = l
    }
    if d.Width <= 0 {
        d.Width = w
    }
    if d.Height <= 0 {
        d.Height = h
    }
}

func isInches(unit string) bool {
    switch strings.ToLower(strings.TrimSpace(unit)) {
    case "in", "inch", "inches":
        return true
    default:
        return false
    }
}
