package rate

import (
    "sort"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "shipquote/internal/money"
    "shipquote/internal/shipment"
)

func newTestPricer(t *testing.T) *Pricer {
    t.Helper()
    return NewPricer(loadDefaultTables(t))
}

func surchargeByType(q Quote, typ string) (money.Amount, bool) {
    for _, s := range q.Surcharges {
        if s.Type == typ {
            return s.Amount, true
        }
    }
    return 0, false
}

func quoteByService(t *testing.T, quotes []Quote, id string) Quote {
    t.Helper()
    for _, q := range quotes {
        if q.ServiceID == id {
            return q
        }
    }
    t.Fatalf("service %s not in quotes", id)
    return Quote{}
}

func TestParcelResidentialBulky(t *testing.T) {
    // One 5 lb package, 12x8x6 in, to a residential Toronto address.
    // Dimensional weight (~55.3 lb) dominates, so the dimensional
    // surcharge appears alongside fuel and the residential fee.
    p := newTestPricer(t)
    items := []shipment.Item{{Weight: 5, Dimensions: &shipment.Dimensions{Length: 12, Width: 8, Height: 6, Unit: "in"}}}
    dest := Destination{City: "Toronto", Region: "ON", Residential: true}

    quotes := p.Price(items, shipment.KindPackage, dest, nil, nil)
    require.Len(t, quotes, 4)

    ground := quoteByService(t, quotes, "polaris_ground")
    assert.Equal(t, money.Amount(4396), ground.Base)
    fuel, ok := surchargeByType(ground, SurchargeFuel)
    require.True(t, ok)
    assert.Equal(t, money.Amount(528), fuel)
    res, ok := surchargeByType(ground, SurchargeResidential)
    require.True(t, ok)
    assert.Equal(t, money.Amount(450), res)
    dim, ok := surchargeByType(ground, SurchargeDimensionalWeight)
    require.True(t, ok)
    assert.Equal(t, money.Amount(1258), dim)
    assert.Equal(t, money.Amount(6632), ground.Total)
    assert.Equal(t, 5, ground.TransitTimeDays)

    priority := quoteByService(t, quotes, "northstar_priority")
    assert.Equal(t, money.Amount(13758), priority.Total)
}

func TestParcelDenseNonResidential(t *testing.T) {
    // 60 lb in the same carton: actual weight wins, so no dimensional
    // surcharge line and no residential entries at all.
    p := newTestPricer(t)
    items := []shipment.Item{{Weight: 60, Dimensions: &shipment.Dimensions{Length: 12, Width: 8, Height: 6, Unit: "in"}}}
    dest := Destination{City: "Toronto", Region: "ON"}

    quotes := p.Price(items, shipment.KindPackage, dest, []string{"polaris_ground"}, nil)
    require.Len(t, quotes, 1)
    q := quotes[0]

    assert.Equal(t, money.Amount(4140), q.Base)
    fuel, ok := surchargeByType(q, SurchargeFuel)
    require.True(t, ok)
    assert.Equal(t, money.Amount(497), fuel)
    _, ok = surchargeByType(q, SurchargeResidential)
    assert.False(t, ok)
    _, ok = surchargeByType(q, SurchargeDimensionalWeight)
    assert.False(t, ok, "dimensional surcharge must be omitted, not zero")
    assert.Equal(t, money.Amount(4637), q.Total)
}

func TestLTLRemoteNorthernPallets(t *testing.T) {
    // Ten 50 lb pallets, 4x4x4 ft, to Yellowknife: density 0.78 lands in
    // class 500 and the 5.0 factor dominates the totals.
    p := newTestPricer(t)
    items := []shipment.Item{{Weight: 50, Quantity: 10, Dimensions: &shipment.Dimensions{Length: 4, Width: 4, Height: 4, Unit: "ft"}}}
    dest := Destination{City: "Yellowknife", Region: "NT"}

    quotes := p.Price(items, shipment.KindPallet, dest, nil, nil)
    require.Len(t, quotes, 3)

    std := quoteByService(t, quotes, "polaris_ltl_standard")
    assert.Equal(t, money.Amount(237500), std.Base)
    fuel, ok := surchargeByType(std, SurchargeFuel)
    require.True(t, ok)
    assert.Equal(t, money.Amount(42750), fuel)
    lift, ok := surchargeByType(std, SurchargeLiftGate)
    require.True(t, ok)
    assert.Equal(t, money.Amount(8500), lift)
    _, ok = surchargeByType(std, SurchargeResidentialDelivery)
    assert.False(t, ok)
    assert.Equal(t, money.Amount(288750), std.Total)

    assert.Equal(t, money.Amount(400850), quoteByService(t, quotes, "keystone_ltl_express").Total)
    assert.Equal(t, money.Amount(512950), quoteByService(t, quotes, "polaris_ltl_premium").Total)
}

func TestLTLMinimumChargeFloor(t *testing.T) {
    // A single light pallet close to the origin computes below the
    // floor; the total is clamped while base and surcharges stand.
    p := newTestPricer(t)
    items := []shipment.Item{{Weight: 50}}
    dest := Destination{City: "Toronto", Region: "ON"}

    quotes := p.Price(items, shipment.KindPallet, dest, []string{"polaris_ltl_standard"}, nil)
    require.Len(t, quotes, 1)
    q := quotes[0]

    assert.Equal(t, money.Amount(7600), q.Base)
    assert.Equal(t, money.Amount(18500), q.Total)
}

func TestLTLMinimumChargeHolds(t *testing.T) {
    p := newTestPricer(t)
    dests := []Destination{
        {City: "Toronto"}, {City: "Yellowknife"}, {City: "Nowhere", Region: "ZZ"}, {Residential: true},
    }
    for _, dest := range dests {
        quotes := p.Price([]shipment.Item{{Weight: 10}}, shipment.KindPallet, dest, nil, nil)
        for _, q := range quotes {
            assert.GreaterOrEqual(t, q.Total, money.Amount(18500), "service %s to %s", q.ServiceID, dest.City)
        }
    }
}

func TestQuotesSortedAscendingByTotal(t *testing.T) {
    p := newTestPricer(t)
    items := []shipment.Item{{Weight: 12, Quantity: 4}}
    for _, kind := range []shipment.Kind{shipment.KindPackage, shipment.KindPallet} {
        quotes := p.Price(items, kind, Destination{City: "Halifax", Residential: true}, nil, nil)
        sorted := sort.SliceIsSorted(quotes, func(i, j int) bool {
            return quotes[i].Total < quotes[j].Total
        })
        assert.True(t, sorted, "%s quotes not sorted by total", kind)
    }
}

func TestFilterIntersectionProperties(t *testing.T) {
    p := newTestPricer(t)
    quotes := p.Price([]shipment.Item{{Weight: 5}}, shipment.KindPackage, Destination{City: "Ottawa"}, nil, nil)
    require.Len(t, quotes, 4)

    include := []string{"polaris_ground", "northstar_standard", "northstar_priority"}
    exclude := []string{"northstar_priority", "polaris_express"}

    both := Filter(quotes, include, exclude)
    ids := func(qs []Quote) []string {
        out := make([]string, len(qs))
        for i, q := range qs {
            out[i] = q.ServiceID
        }
        return out
    }
    assert.Equal(t, []string{"polaris_ground", "northstar_standard"}, ids(both))

    // Commutative: allow-then-deny equals deny-then-allow.
    assert.Equal(t, ids(Filter(Filter(quotes, include, nil), nil, exclude)), ids(both))
    assert.Equal(t, ids(Filter(Filter(quotes, nil, exclude), include, nil)), ids(both))
    // Idempotent.
    assert.Equal(t, ids(Filter(both, include, exclude)), ids(both))
    // No lists means no filtering.
    assert.Equal(t, ids(quotes), ids(Filter(quotes, nil, nil)))
}

func TestPriceDeterministic(t *testing.T) {
    p := newTestPricer(t)
    items := []shipment.Item{
        {Weight: 5, Dimensions: &shipment.Dimensions{Length: 12, Width: 8, Height: 6, Unit: "in"}},
        {Weight: 2, Quantity: 3},
    }
    dest := Destination{City: "Montreal", Region: "QC", Residential: true}

    a := p.Price(items, shipment.KindPackage, dest, nil, []string{"polaris_express"})
    b := p.Price(items, shipment.KindPackage, dest, nil, []string{"polaris_express"})
    assert.Equal(t, a, b)
}
