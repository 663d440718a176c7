package symbol

import (
	"regexp"
	"strings"
)

// indexAliases maps common index tickers to liquid ETF proxies so every
// downstream provider sees a plain equity symbol.
var indexAliases = map[string]string{
	"GSPC":   "SPY",
	"INX":    "SPY",
	"SPX":    "SPY",
	"US500":  "SPY",
	"NDX":    "QQQ",
	"NAS100": "QQQ",
	"US100":  "QQQ",
	"IXIC":   "QQQ",
	"DJI":    "DIA",
	"DJIA":   "DIA",
	"RUT":    "IWM",
	"RTY":    "IWM",
}

var canonicalPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.]{0,15}$`)

// Normalize converts raw user input into the canonical symbol form:
// uppercase, leading ^ or . stripped, hyphens mapped to dots, index tickers
// aliased to their ETF proxies.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "^")
	s = strings.TrimPrefix(s, ".")
	s = strings.ReplaceAll(s, "-", ".")
	if alias, ok := indexAliases[s]; ok {
		return alias
	}
	return s
}

// IsValid reports whether s is already in canonical form.
func IsValid(s string) bool {
	return canonicalPattern.MatchString(s)
}

// NormalizeValid normalizes raw and reports whether the result is usable.
func NormalizeValid(raw string) (string, bool) {
	s := Normalize(raw)
	return s, IsValid(s)
}
