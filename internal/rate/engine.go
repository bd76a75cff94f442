package rate

import (
    "math"
    "sort"
    "time"

    "shipquote/internal/money"
    "shipquote/internal/shipment"
)

// Surcharge is one itemized line on a quote.
type Surcharge struct {
    Type   string       `json:"type"`
    Amount money.Amount `json:"amount"`
}

// Quote is one carrier-service offer. Immutable once produced; Total is
// composed once from Base plus the surcharges and never recomputed.
type Quote struct {
    CarrierName     string       `json:"carrier_name"`
    ServiceName     string       `json:"service_name"`
    ServiceID       string       `json:"service_id"`
    ValidUntil      string       `json:"valid_until"`
    Base            money.Amount `json:"base"`
    Surcharges      []Surcharge  `json:"surcharges"`
    Total           money.Amount `json:"total"`
    TransitTimeDays int          `json:"transit_time_days"`
}

// Surcharge line types.
const (
    SurchargeFuel                = "fuel"
    SurchargeResidential         = "residential"
    SurchargeDimensionalWeight   = "dimensional_weight"
    SurchargeLiftGate            = "lift_gate"
    SurchargeResidentialDelivery = "residential_delivery"
)

// quoteValidityDays is how long a produced quote is honored.
const quoteValidityDays = 7

// Engine synthesizes priced offers from a shipment summary and a
// geographic factor, branching on packaging kind.
type Engine struct {
    carriers CarrierTable
    freight  *FreightClassifier
}

func NewEngine(carriers CarrierTable, freight *FreightClassifier) *Engine {
    return &Engine{carriers: carriers, freight: freight}
}

// Quote prices every configured carrier service for the shipment and
// returns the offers sorted ascending by total.
func (e *Engine) Quote(sum shipment.Summary, factor float64, dest Destination, kind shipment.Kind) []Quote {
    validUntil := time.Now().UTC().AddDate(0, 0, quoteValidityDays).Format("2006-01-02")
    var quotes []Quote
    if kind == shipment.KindPallet {
        quotes = e.quoteLTL(sum, factor, dest, validUntil)
    } else {
        quotes = e.quoteParcel(sum, factor, dest, validUntil)
    }
    sort.SliceStable(quotes, func(i, j int) bool {
        return quotes[i].Total < quotes[j].Total
    })
    return quotes
}

func (e *Engine) quoteParcel(sum shipment.Summary, factor float64, dest Destination, validUntil string) []Quote {
    fees := e.carriers.Parcel
    quotes := make([]Quote, 0, len(fees.Services))
    for _, svc := range fees.Services {
        weightCost := money.Round(sum.BillableWeight * float64(svc.CentsPerPound))
        handling := money.Amount(int64(sum.ItemCount) * fees.HandlingCentsPerItem)
        baseCost := weightCost + handling

        mult := factor
        if dest.Residential {
            mult *= fees.ResidentialMultiplier
        }
        adjusted := money.Round(float64(baseCost) * mult)

        var surcharges []Surcharge
        fuel := money.Round(float64(adjusted) * fees.FuelRate)
        surcharges = append(surcharges, Surcharge{Type: SurchargeFuel, Amount: fuel})
        if dest.Residential {
            surcharges = append(surcharges, Surcharge{
                Type:   SurchargeResidential,
                Amount: money.Amount(fees.ResidentialFeeCents),
            })
        }
        if sum.DimensionalWeight > sum.ActualWeight {
            excess := sum.DimensionalWeight - sum.ActualWeight
            surcharges = append(surcharges, Surcharge{
                Type:   SurchargeDimensionalWeight,
                Amount: money.Round(excess * float64(fees.DimensionalPenaltyPerLb)),
            })
        }

        total := adjusted
        for _, s := range surcharges {
            total += s.Amount
        }
        quotes = append(quotes, Quote{
            CarrierName:     svc.Carrier,
            ServiceName:     svc.Service,
            ServiceID:       svc.ID,
            ValidUntil:      validUntil,
            Base:            adjusted,
            Surcharges:      surcharges,
            Total:           total,
            TransitTimeDays: svc.TransitDays,
        })
    }
    return quotes
}

func (e *Engine) quoteLTL(sum shipment.Summary, factor float64, dest Destination, validUntil string) []Quote {
    fees := e.carriers.LTL
    class := e.freight.Classify(sum.Density)
    weightUnits := math.Max(1, math.Ceil(sum.ActualWeight/100))

    quotes := make([]Quote, 0, len(fees.Services))
    for _, svc := range fees.Services {
        classRate := e.freight.RateFor(class, svc.Tier)
        baseCost := money.Round(weightUnits * float64(classRate))
        adjusted := money.Round(float64(baseCost) * factor)

        surcharges := []Surcharge{
            {Type: SurchargeFuel, Amount: money.Round(float64(adjusted) * fees.FuelRate)},
            {Type: SurchargeLiftGate, Amount: money.Amount(fees.LiftGateCents)},
        }
        if dest.Residential {
            surcharges = append(surcharges, Surcharge{
                Type:   SurchargeResidentialDelivery,
                Amount: money.Amount(fees.ResidentialFeeCents),
            })
        }

        total := adjusted
        for _, s := range surcharges {
            total += s.Amount
        }
        // LTL quotes are floored at the minimum charge.
        if floor := money.Amount(fees.MinimumChargeCents); total < floor {
            total = floor
        }
        quotes = append(quotes, Quote{
            CarrierName:     svc.Carrier,
            ServiceName:     svc.Service,
            ServiceID:       svc.ID,
            ValidUntil:      validUntil,
            Base:            adjusted,
            Surcharges:      surcharges,
            Total:           total,
            TransitTimeDays: svc.TransitDays,
        })
    }
    return quotes
}

// Filter applies an allow-list and a deny-list of service ids. Both are
// optional; applying both keeps the intersection of "in allow-list" and
// "not in deny-list". Idempotent and order-independent.
func Filter(quotes []Quote, include, exclude []string) []Quote {
    if len(include) == 0 && len(exclude) == 0 {
        return quotes
    }
    allowed := toSet(include)
    denied := toSet(exclude)
    out := make([]Quote, 0, len(quotes))
    for _, q := range quotes {
        if len(allowed) > 0 && !allowed[q.ServiceID] {
            continue
        }
        if denied[q.ServiceID] {
            continue
        }
        out = append(out, q)
    }
    return out
}

func toSet(ids []string) map[string]bool {
    if len(ids) == 0 {
        return nil
    }
    set := make(map[string]bool, len(ids))
    for _, id := range ids {
        set[id] = true
    }
    return set
}

// Pricer runs the full rating pipeline for one request: analyze,
// geographic factor, quote, filter. Pure and deterministic for a given
// set of tables, safe for any number of concurrent callers.
type Pricer struct {
    rater  *DistanceRater
    engine *Engine
}

func NewPricer(t *Tables) *Pricer {
    classifier := NewFreightClassifier(t.Freight)
    return &Pricer{
        rater:  NewDistanceRater(t.Distance),
        engine: NewEngine(t.Carriers, classifier),
    }
}

func (p *Pricer) Price(items []shipment.Item, kind shipment.Kind, dest Destination, include, exclude []string) []Quote {
    sum := shipment.Analyze(items, kind)
    factor := p.rater.Factor(dest)
    quotes := p.engine.Quote(sum, factor, dest, kind)
    return Filter(quotes, include, exclude)
}
