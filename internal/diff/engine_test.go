package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/contract-diff/internal/contract"
)

func parseFixture(t *testing.T, name string) *contract.Record {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "contract", "testdata", name))
	require.NoError(t, err)
	return contract.Parse(string(data))
}

func TestCompare_Fixtures(t *testing.T) {
	res := Compare(parseFixture(t, "contract_v1.txt"), parseFixture(t, "contract_v2.txt"))

	assert.Equal(t, StrategyStructured, res.Strategy)
	assert.Equal(t, "Found 5 payout changes (matched by key conditions).", res.Summary)

	want := []struct {
		section, condition, oldValue, newValue, change string
	}{
		{"Free Trial", "TRIAL-01, New", "US$10.00 per order", "US$18.00 per order",
			"Changed from US$10.00 per order to US$18.00 per order (+$8.00 change)"},
		{"Free Trial", "US$50.00, US", "US$5.00 per order", "",
			"Changed from US$5.00 per order to none"},
		{"Free Trial", "Returning", "", "US$2.50 per order",
			"Changed from none to US$2.50 per order"},
		{"Online Sale", "Books", "10% of sale amount", "12% of sale amount",
			"Changed from 10% of sale amount to 12% of sale amount"},
		{"Online Sale", "promo-eu, EUR", "US$1,200.50 per order", "US$1,000.00 per order",
			"Changed from US$1,200.50 per order to US$1,000.00 per order (-$200.50 change)"},
	}
	require.Len(t, res.SignificantChanges, len(want))
	for i, w := range want {
		got := res.SignificantChanges[i]
		assert.Equal(t, w.section, got.Section, "change %d", i)
		assert.Equal(t, w.condition, got.Condition, "change %d", i)
		assert.Equal(t, w.oldValue, got.OldValue, "change %d", i)
		assert.Equal(t, w.newValue, got.NewValue, "change %d", i)
		assert.Equal(t, w.change, got.Change, "change %d", i)
	}

	assert.Equal(t, []string{
		"Registration: Required → Not required",
		"Action Locking: 30 days after the event → 45 days after the event",
		"Payout Scheduling: Net 30 → Net 15",
	}, res.MinorChanges)

	require.Len(t, res.BasicInformation, len(contract.DefaultAspects))
	assert.Len(t, res.ChangedAspects(), 3)
	assert.Equal(t, StatusUnchanged, res.BasicInformation[2].Status)
}

func TestCompare_Idempotent(t *testing.T) {
	rec := parseFixture(t, "contract_v1.txt")
	res := Compare(rec, rec)

	assert.Empty(t, res.SignificantChanges)
	assert.Empty(t, res.MinorChanges)
	assert.Empty(t, res.ChangedAspects())
	assert.Equal(t, "Found 0 payout changes (matched by key conditions).", res.Summary)
}

func TestCompare_SwapSymmetry(t *testing.T) {
	v1 := parseFixture(t, "contract_v1.txt")
	v2 := parseFixture(t, "contract_v2.txt")

	forward := Compare(v1, v2)
	backward := Compare(v2, v1)
	require.Len(t, backward.SignificantChanges, len(forward.SignificantChanges))

	byKey := make(map[string]ChangeRecord)
	for _, c := range backward.SignificantChanges {
		byKey[c.Section+"/"+string(c.Key)] = c
	}
	for _, f := range forward.SignificantChanges {
		b, ok := byKey[f.Section+"/"+string(f.Key)]
		require.True(t, ok, "missing %s/%s", f.Section, f.Key)
		assert.Equal(t, f.OldValue, b.NewValue)
		assert.Equal(t, f.NewValue, b.OldValue)
		if f.Delta == nil {
			assert.Nil(t, b.Delta)
			continue
		}
		require.NotNil(t, b.Delta)
		assert.Equal(t, -f.Delta.Cents, b.Delta.Cents)
	}
	assert.Len(t, backward.ChangedAspects(), len(forward.ChangedAspects()))
}

func TestCompare_NumericDelta(t *testing.T) {
	before := contract.Parse("S: $1\nPayout Groups\n1\nItem SKU is A\nUS$10.00 per order\n")
	after := contract.Parse("S: $1\nPayout Groups\n1\nItem SKU is A\nUS$18.00 per order\n")

	res := Compare(before, after)
	require.Len(t, res.SignificantChanges, 1)
	c := res.SignificantChanges[0]
	require.NotNil(t, c.Delta)
	assert.Equal(t, int64(800), c.Delta.Cents)
	assert.Equal(t, "+$8.00 change", c.Delta.String())
	assert.Contains(t, c.Change, "(+$8.00 change)")
}

func TestCompare_AddedCondition(t *testing.T) {
	before := contract.Parse("S: $1\nPayout Groups\n1\nItem SKU is A\nUS$1.00\n")
	after := contract.Parse("S: $1\nPayout Groups\n1\nItem SKU is A\nUS$1.00\n2\nItem SKU is B\nUS$2.00\n")

	res := Compare(before, after)
	require.Len(t, res.SignificantChanges, 1)
	c := res.SignificantChanges[0]
	assert.Equal(t, contract.GroupKey("B"), c.Key)
	assert.Empty(t, c.OldValue)
	assert.Equal(t, "US$2.00", c.NewValue)
	assert.Equal(t, "Changed from none to US$2.00", c.Change)
	assert.Nil(t, c.Delta)
}

func TestCompare_RegistrationRoundTrip(t *testing.T) {
	res := Compare(contract.Parse("Registration: Required"), contract.Parse("Registration: Not required"))

	changed := res.ChangedAspects()
	require.Len(t, changed, 1)
	assert.Equal(t, AspectComparison{
		Aspect:   contract.AspectRegistration,
		OldValue: "Required",
		NewValue: "Not required",
		Status:   StatusChanged,
	}, changed[0])
	assert.Empty(t, res.SignificantChanges)
}

func TestCompare_MalformedInput(t *testing.T) {
	res := Compare(contract.Parse("garbage\n%%%\n"), contract.Parse(""))
	assert.Empty(t, res.SignificantChanges)
	assert.Empty(t, res.ChangedAspects())
}

func TestCompare_NilRecords(t *testing.T) {
	res := Compare(nil, contract.Parse("Invoicing: Weekly"))
	assert.Equal(t, []string{"Invoicing:  → Weekly"}, res.MinorChanges)
}

func TestCompare_DuplicateKeyLastWins(t *testing.T) {
	before := contract.Parse("S: $1\nPayout Groups\n1\nItem SKU is A\nUS$1.00\n2\nItem SKU is A\nUS$3.00\n")
	after := contract.Parse("S: $1\nPayout Groups\n1\nItem SKU is A\nUS$3.00\n")
	assert.Empty(t, Compare(before, after).SignificantChanges)
}

func TestEngine_CustomAspects(t *testing.T) {
	e := NewEngine([]contract.Aspect{contract.AspectQualifiedReferral})
	res := e.Compare(contract.NewRecord(), &contract.Record{
		Aspects: map[contract.Aspect]string{contract.AspectQualifiedReferral: "First purchase"},
	})
	require.Len(t, res.BasicInformation, 1)
	assert.True(t, res.BasicInformation[0].Changed())
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "", want: StrategyStructured},
		{in: "structured", want: StrategyStructured},
		{in: "lines", want: StrategyLines},
		{in: "words", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
