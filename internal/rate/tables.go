package rate

import (
    "embed"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"

    "gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var defaultTables embed.FS

// DistanceTable is the two-tier geographic cost model: exact city match
// first, region fallback second, fixed default last.
type DistanceTable struct {
    Default float64            `yaml:"default"`
    Cities  map[string]float64 `yaml:"cities"`
    Regions map[string]float64 `yaml:"regions"`
}

// LadderStep maps a minimum density (lbs/ft3) to a freight class.
type LadderStep struct {
    MinDensity float64 `yaml:"min_density"`
    Class      Class   `yaml:"class"`
}

// TierRates holds cents-per-hundredweight base rates for one class.
type TierRates struct {
    Standard int64 `yaml:"standard"`
    Express  int64 `yaml:"express"`
    Premium  int64 `yaml:"premium"`
}

// FreightTable is the published density ladder plus the per-class,
// per-tier rate matrix.
type FreightTable struct {
    Ladder        []LadderStep        `yaml:"ladder"`
    FallbackClass Class               `yaml:"fallback_class"`
    Rates         map[Class]TierRates `yaml:"rates"`
}

// ParcelService is one carrier/service pair on the parcel path.
type ParcelService struct {
    Carrier       string `yaml:"carrier"`
    Service       string `yaml:"service"`
    ID            string `yaml:"id"`
    CentsPerPound int64  `yaml:"cents_per_pound"`
    TransitDays   int    `yaml:"transit_days"`
}

// LTLService is one carrier/service pair on the LTL path.
type LTLService struct {
    Carrier     string `yaml:"carrier"`
    Service     string `yaml:"service"`
    ID          string `yaml:"id"`
    Tier        Tier   `yaml:"tier"`
    TransitDays int    `yaml:"transit_days"`
}

// ParcelFees is the parcel-path fee schedule.
type ParcelFees struct {
    Services                 []ParcelService `yaml:"services"`
    HandlingCentsPerItem     int64           `yaml:"handling_cents_per_item"`
    FuelRate                 float64         `yaml:"fuel_rate"`
    ResidentialMultiplier    float64         `yaml:"residential_multiplier"`
    ResidentialFeeCents      int64           `yaml:"residential_fee_cents"`
    DimensionalPenaltyPerLb  int64           `yaml:"dimensional_penalty_cents_per_pound"`
}

// LTLFees is the LTL-path fee schedule.
type LTLFees struct {
    Services            []LTLService `yaml:"services"`
    FuelRate            float64      `yaml:"fuel_rate"`
    LiftGateCents       int64        `yaml:"lift_gate_cents"`
    ResidentialFeeCents int64        `yaml:"residential_fee_cents"`
    MinimumChargeCents  int64        `yaml:"minimum_charge_cents"`
}

// CarrierTable is the full service catalogue and fee schedule.
type CarrierTable struct {
    Parcel ParcelFees `yaml:"parcel"`
    LTL    LTLFees    `yaml:"ltl"`
}

// Tables bundles all rating configuration. The numeric constants here
// are replaceable data, not engine logic.
type Tables struct {
    Distance DistanceTable
    Freight  FreightTable
    Carriers CarrierTable
}

// LoadTables reads the rating tables. Files present under dir override
// the embedded defaults of the same name; an empty dir loads defaults
// only.
func LoadTables(dir string) (*Tables, error) {
    var t Tables
    if err := loadTable(dir, "distance.yaml", &t.Distance); err != nil {
        return nil, err
    }
    if err := loadTable(dir, "freight.yaml", &t.Freight); err != nil {
        return nil, err
    }
    if err := loadTable(dir, "carriers.yaml", &t.Carriers); err != nil {
        return nil, err
    }
    normalize(&t)
    if err := validateTables(&t); err != nil {
        return nil, err
    }
    return &t, nil
}

func loadTable(dir, name string, out any) error {
    var (
        data []byte
        err  error
    )
    if dir != "" {
        path := filepath.Join(dir, name)
        if data, err = os.ReadFile(path); err != nil && !os.IsNotExist(err) {
            return fmt.Errorf("read %s: %w", path, err)
        }
    }
    if data == nil {
        if data, err = defaultTables.ReadFile("tables/" + name); err != nil {
            return fmt.Errorf("embedded %s: %w", name, err)
        }
    }
    if err := yaml.Unmarshal(data, out); err != nil {
        return fmt.Errorf("parse %s: %w", name, err)
    }
    return nil
}

// normalize canonicalizes lookup keys and orders the ladder so lookups
// never depend on how an override file was written.
func normalize(t *Tables) {
    cities := make(map[string]float64, len(t.Distance.Cities))
    for k, v := range t.Distance.Cities {
        cities[strings.ToLower(strings.TrimSpace(k))] = v
    }
    t.Distance.Cities = cities

    regions := make(map[string]float64, len(t.Distance.Regions))
    for k, v := range t.Distance.Regions {
        regions[strings.ToUpper(strings.TrimSpace(k))] = v
    }
    t.Distance.Regions = regions

    sort.SliceStable(t.Freight.Ladder, func(i, j int) bool {
        return t.Freight.Ladder[i].MinDensity > t.Freight.Ladder[j].MinDensity
    })
}

func validateTables(t *Tables) error {
    if t.Distance.Default <= 0 {
        return fmt.Errorf("distance table: default factor must be positive")
    }
    if len(t.Freight.Ladder) == 0 {
        return fmt.Errorf("freight table: empty density ladder")
    }
    if _, ok := t.Freight.Rates[t.Freight.FallbackClass]; !ok {
        return fmt.Errorf("freight table: fallback class %q has no rate row", t.Freight.FallbackClass)
    }
    if len(t.Carriers.Parcel.Services) == 0 {
        return fmt.Errorf("carrier table: no parcel services")
    }
    if len(t.Carriers.LTL.Services) == 0 {
        return fmt.Errorf("carrier table: no ltl services")
    }
    return nil
}
