package camps

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
)

// ParsePrice converts an admin-entered price string into EUR money.
// The office enters prices the German way, with an optional trailing
// currency symbol: "1.140,00€", "15,00", "120". Whitespace and thousands
// dots are stripped, the decimal comma becomes a decimal point.
func ParsePrice(raw string) (*money.Money, error) {
	cleaned := strings.NewReplacer("€", "", " ", "", " ", "", ".", "").Replace(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return nil, fmt.Errorf("empty price string")
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed price %q: %w", raw, err)
	}
	if amount < 0 {
		return nil, fmt.Errorf("negative price %q", raw)
	}

	return money.New(int64(math.Round(amount*100)), money.EUR), nil
}

// FormatPrice renders money back into the sheet convention,
// e.g. 114000 cents -> "1.140,00€". FormatPrice(ParsePrice(s)) is stable
// for every well-formed s.
func FormatPrice(m *money.Money) string {
	cents := m.Amount()
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	euros := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range euros {
		if i > 0 && (len(euros)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	return fmt.Sprintf("%s%s,%02d€", sign, b.String(), cents%100)
}
