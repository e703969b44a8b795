package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareLines(t *testing.T) {
	before := "Header\n  US$10.00 per order \n\nFooter\n"
	after := "Header\r\nUS$12.00 per order\r\nFooter changed\r\nExtra\r\n"

	res := CompareLines(before, after)
	assert.Equal(t, StrategyLines, res.Strategy)
	assert.Equal(t, "Found 3 changed lines.", res.Summary)
	require.Len(t, res.LineChanges, 3)

	assert.Equal(t, LineChange{
		Line:     2,
		Label:    "Line 2",
		OldValue: "US$10.00 per order",
		NewValue: "US$12.00 per order",
		Change:   "Amount changed from US$10.00 to US$12.00",
	}, res.LineChanges[0])
	assert.Equal(t, "Line changed", res.LineChanges[1].Change)
	assert.Equal(t, "Line 4", res.LineChanges[2].Label)
	assert.Empty(t, res.LineChanges[2].OldValue)
	assert.Equal(t, "Extra", res.LineChanges[2].NewValue)
}

func TestCompareLines_Identical(t *testing.T) {
	res := CompareLines("a\nb", " a \n\n b ")
	assert.Empty(t, res.LineChanges)
}

func TestCompareLines_SameAmountIsLineChange(t *testing.T) {
	res := CompareLines("Pay US$5.00 now", "Pay US$5.00 later")
	require.Len(t, res.LineChanges, 1)
	assert.Equal(t, "Line changed", res.LineChanges[0].Change)
}
