package diff

import (
	"regexp"
	"strconv"
	"strings"
)

// usdAmount matches "US$1,234.56", "US$1234.5" and "US$10".
var usdAmount = regexp.MustCompile(`US\$((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)`)

// ExtractUSD returns the first US$ amount in s, in cents. Percentages and
// descriptive payouts report false.
func ExtractUSD(s string) (int64, bool) {
	m := usdAmount.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return parseCents(strings.ReplaceAll(m[1], ",", ""))
}

// parseCents converts a decimal string to cents, rounding half up past the
// second fractional digit.
func parseCents(num string) (int64, bool) {
	whole, frac, _ := strings.Cut(num, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (1<<62)/100 {
		return 0, false
	}
	frac += "000"
	cents, err := strconv.ParseInt(frac[:2], 10, 64)
	if err != nil {
		return 0, false
	}
	total := units*100 + cents
	if frac[2] >= '5' {
		total++
	}
	return total, true
}

// usdDelta returns new minus old when both payouts carry differing amounts.
func usdDelta(oldPayout, newPayout string) *Delta {
	o, ok := ExtractUSD(oldPayout)
	if !ok {
		return nil
	}
	n, ok := ExtractUSD(newPayout)
	if !ok || o == n {
		return nil
	}
	return &Delta{Cents: n - o}
}
