package normalize

import "regexp"

// A partner PIN is a contiguous run of exactly 11 digits. Longer digit
// runs are account or reference numbers, never PINs.
var (
	pinScan  = regexp.MustCompile(`(?:^|\D)(\d{11})(?:\D|$)`)
	pinExact = regexp.MustCompile(`^\d{11}$`)
)

// ExtractPIN scans free text for the first exactly-11-digit run and
// returns it, or "" when the text holds none.
func ExtractPIN(text string) string {
	m := pinScan.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// ValidPIN reports whether s is already a bare 11-digit PIN.
func ValidPIN(s string) bool {
	return pinExact.MatchString(s)
}
