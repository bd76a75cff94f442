package rate

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoadTablesEmbeddedDefaults(t *testing.T) {
    tables, err := LoadTables("")
    require.NoError(t, err)

    assert.InDelta(t, 1.5, tables.Distance.Default, 1e-9)
    assert.Len(t, tables.Freight.Ladder, 18)
    assert.Len(t, tables.Carriers.Parcel.Services, 4)
    assert.Len(t, tables.Carriers.LTL.Services, 3)
}

func TestLoadTablesDirOverridesOneFile(t *testing.T) {
    dir := t.TempDir()
    override := `
default: 2.0
cities:
  " MOOSE FACTORY ": 9.9
regions:
  on: 1.1
`
    require.NoError(t, os.WriteFile(filepath.Join(dir, "distance.yaml"), []byte(override), 0o644))

    tables, err := LoadTables(dir)
    require.NoError(t, err)

    // Overridden file replaces the embedded one; keys are normalized.
    r := NewDistanceRater(tables.Distance)
    assert.InDelta(t, 9.9, r.Factor(Destination{City: "moose factory"}), 1e-9)
    assert.InDelta(t, 1.1, r.Factor(Destination{City: "Toronto", Region: "on"}), 1e-9)
    assert.InDelta(t, 2.0, r.Factor(Destination{City: "Elsewhere"}), 1e-9)

    // The other tables still come from the embedded defaults.
    assert.Len(t, tables.Carriers.Parcel.Services, 4)
}

func TestLoadTablesLadderSortedDescending(t *testing.T) {
    tables, err := LoadTables("")
    require.NoError(t, err)
    for i := 1; i < len(tables.Freight.Ladder); i++ {
        assert.Greater(t, tables.Freight.Ladder[i-1].MinDensity, tables.Freight.Ladder[i].MinDensity)
    }
}
