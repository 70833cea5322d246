package checkout

import (
	"fmt"
	"strconv"
	"strings"
)

// PromoTable maps an upper-case promo code to its discount percentage.
type PromoTable map[string]int64

func DefaultPromoTable() PromoTable {
	return PromoTable{
		"EARLYBIRD10": 10,
		"VIP20":       20,
	}
}

// Lookup matches code case-insensitively, ignoring surrounding spaces.
func (t PromoTable) Lookup(code string) (string, int64, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return "", 0, false
	}

	rate, ok := t[normalized]
	if !ok {
		return "", 0, false
	}

	return normalized, rate, true
}

// ParsePromoTable parses "CODE:pct,CODE:pct".
func ParsePromoTable(s string) (PromoTable, error) {
	const op = "checkout.ParsePromoTable"

	out := PromoTable{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		code, pctStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%s: invalid entry %q", op, part)
		}

		pct, err := strconv.ParseInt(strings.TrimSpace(pctStr), 10, 64)
		if err != nil || pct <= 0 || pct > 100 {
			return nil, fmt.Errorf("%s: invalid percentage in %q", op, part)
		}

		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			return nil, fmt.Errorf("%s: empty code in %q", op, part)
		}

		out[code] = pct
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no promo codes", op)
	}

	return out, nil
}
