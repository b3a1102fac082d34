package record

import (
	"regexp"
	"strconv"
	"strings"
)

// missingSentinels are the lowercased string forms treated as absent values.
// They cover pandas/Excel exports ("nan", "<na>") as well as literal nulls.
var missingSentinels = map[string]bool{
	"nan":  true,
	"<na>": true,
	"none": true,
	"null": true,
}

var (
	// reNonDigitRun matches every maximal run of non-digit bytes: ordinary
	// hyphens, unicode dash variants, slashes, underscores, spaces.
	reNonDigitRun = regexp.MustCompile(`[^0-9]+`)

	// reCASShape is the canonical CAS registry number shape.
	reCASShape = regexp.MustCompile(`^\d{2,7}-\d{2}-\d$`)
)

// IsMissing reports whether v is an empty-equivalent value: empty or
// whitespace-only, or a recognized missing sentinel ("nan", "<na>", "none",
// "null", case-insensitive).
func IsMissing(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return true
	}
	return missingSentinels[strings.ToLower(s)]
}

// NormalizeCAS reshapes a raw CAS value into the standard XXXXX-XX-X form.
//
// Every maximal run of non-digit characters is collapsed to a single hyphen
// and edge hyphens are stripped.  If fewer than 5 digits remain the
// dash-normalized string is returned as-is: it is not a plausible CAS but the
// caller may still want to display it.  Missing input returns "".
func NormalizeCAS(raw string) string {
	if IsMissing(raw) {
		return ""
	}
	rawStr := strings.TrimSpace(raw)

	casStr := strings.Trim(reNonDigitRun.ReplaceAllString(rawStr, "-"), "-")
	if casStr == "" {
		return rawStr
	}

	digits := strings.ReplaceAll(casStr, "-", "")
	if len(digits) < 5 {
		return casStr
	}

	// D...D-DD-D: last digit is the check digit, preceding two the middle group.
	check := digits[len(digits)-1:]
	middle := digits[len(digits)-3 : len(digits)-1]
	first := digits[:len(digits)-3]
	return first + "-" + middle + "-" + check
}

// IsValidCAS reports whether v is a well-formed CAS registry number with a
// correct check digit.
//
//	CAS format: XXXXXXX-YY-Z
//	body = XXXXXXXYY (all digits except the check digit)
//	sum  = Σ body[len-1-i] * (i+1) for i in 0..len-1
//	valid when sum % 10 == Z
func IsValidCAS(v string) bool {
	if IsMissing(v) {
		return false
	}
	s := strings.TrimSpace(v)
	if !reCASShape.MatchString(s) {
		return false
	}

	digits := strings.ReplaceAll(s, "-", "")
	check, err := strconv.Atoi(digits[len(digits)-1:])
	if err != nil {
		return false
	}
	body := digits[:len(digits)-1]

	sum := 0
	n := len(body)
	for i := 0; i < n; i++ {
		d := int(body[n-1-i] - '0')
		sum += d * (i + 1)
	}
	return sum%10 == check
}
