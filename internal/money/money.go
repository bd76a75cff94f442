package money

import (
    "encoding/json"
    "errors"
    "fmt"
    "math"
    "strconv"
)

// Currency is the single currency all amounts are denominated in.
// Conversion is out of scope; every amount in the system is CAD cents.
const Currency = "CAD"

// Amount is a monetary value in minor currency units (cents).
type Amount int64

// Round converts a fractional cent value into an Amount using
// half-away-from-zero rounding, the convention used at every
// pricing step.
func Round(v float64) Amount {
    return Amount(math.Round(v))
}

type wireAmount struct {
    Currency string `json:"currency"`
    Value    string `json:"value"`
}

// MarshalJSON encodes the amount as {"currency":"CAD","value":"1234"}.
// The value is a base-10 integer string so no serialization boundary
// can introduce floating-point drift.
func (a Amount) MarshalJSON() ([]byte, error) {
    return json.Marshal(wireAmount{
        Currency: Currency,
        Value:    strconv.FormatInt(int64(a), 10),
    })
}

func (a *Amount) UnmarshalJSON(data []byte) error {
    var w wireAmount
    if err := json.Unmarshal(data, &w); err != nil {
        return err
    }
    if w.Currency != Currency {
        return fmt.Errorf("unsupported currency %q", w.Currency)
    }
    v, err := strconv.ParseInt(w.Value, 10, 64)
    if err != nil {
        return errors.New("amount value is not a base-10 integer")
    }
    *a = Amount(v)
    return nil
}
