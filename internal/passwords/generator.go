// Package passwords derives ordered password candidates from customer
// profile fields. Statement PDFs in this domain are almost always protected
// with birth-year + phone-digit schemes, so candidate order matters: the
// highest-confidence guesses come first and the probe stops at the first hit.
package passwords

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang-statement-ingestion-service/internal/models"
)

var (
	nonDigitPattern = regexp.MustCompile(`\D`)
	yearPattern     = regexp.MustCompile(`(19|20)\d{2}`)
)

// dobLayouts are tried in order when parsing the date of birth.
var dobLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"20060102",
	"02012006",
	"01022006",
}

// ExtractBirthYear extracts a 4-digit birth year from a date-of-birth string
// of unknown format. It tries known date layouts first, then falls back to a
// year-looking substring, then to range-checked leading/trailing digits.
func ExtractBirthYear(dob string) (string, bool) {
	if dob == "" {
		return "", false
	}

	digits := nonDigitPattern.ReplaceAllString(dob, "")
	if len(digits) < 4 {
		return "", false
	}

	for _, layout := range dobLayouts {
		if parsed, err := time.Parse(layout, dob); err == nil {
			return strconv.Itoa(parsed.Year()), true
		}
	}

	if match := yearPattern.FindString(digits); match != "" {
		return match, true
	}

	if year := digits[:4]; plausibleYear(year) {
		return year, true
	}

	if year := digits[len(digits)-4:]; plausibleYear(year) {
		return year, true
	}

	return "", false
}

func plausibleYear(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1900 && n <= 2100
}

// Generate derives an ordered, deduplicated list of password candidates from
// the customer profile. Each heuristic contributes an independent candidate
// slice; slices are concatenated in decreasing confidence order, then empty
// strings are dropped and duplicates removed preserving first-seen order.
func Generate(profile models.CustomerProfile) []string {
	phone := profile.PhoneDigits()
	dobDigits := nonDigitPattern.ReplaceAllString(profile.DateOfBirth, "")
	nameParts := splitNameParts(profile.Name)
	birthYear, hasYear := ExtractBirthYear(profile.DateOfBirth)

	var candidates []string
	candidates = append(candidates, primaryCandidates(birthYear, hasYear, phone)...)
	candidates = append(candidates, birthYearPhoneVariants(birthYear, hasYear, phone)...)
	candidates = append(candidates, legacyDateCandidates(birthYear, hasYear, dobDigits)...)
	candidates = append(candidates, nameFragmentCandidates(nameParts, dobDigits, phone)...)
	candidates = append(candidates, cardCandidates(profile.CardLastFours, dobDigits)...)
	candidates = append(candidates, dateFormCandidates(profile.DateOfBirth)...)
	candidates = append(candidates, namePartCandidates(nameParts)...)
	candidates = append(candidates, phoneCandidates(phone)...)
	candidates = append(candidates, nameDateCandidates(nameParts, profile.DateOfBirth)...)
	candidates = append(candidates, namePhoneCandidates(nameParts, phone)...)
	candidates = append(candidates, birthYearNameCandidates(birthYear, hasYear, nameParts)...)

	return dedupeStable(candidates)
}

// primaryCandidates yields the dominant real-world scheme: 4-digit birth
// year followed by the last four phone digits.
func primaryCandidates(birthYear string, hasYear bool, phone string) []string {
	if !hasYear || len(phone) < 4 {
		return nil
	}
	return []string{birthYear + phone[len(phone)-4:]}
}

func birthYearPhoneVariants(birthYear string, hasYear bool, phone string) []string {
	if !hasYear || len(phone) < 4 {
		return nil
	}

	variants := []string{
		birthYear[len(birthYear)-2:] + phone[len(phone)-4:],
	}
	if len(phone) >= 6 {
		variants = append(variants, birthYear+phone[len(phone)-6:])
	}
	if len(phone) >= 8 {
		variants = append(variants, birthYear+phone[len(phone)-8:])
	}
	return variants
}

// legacyDateCandidates reinterprets the raw date digits under both YYYYMMDD
// and DDMMYYYY groupings, carried over from older statement password schemes.
func legacyDateCandidates(birthYear string, hasYear bool, dobDigits string) []string {
	if !hasYear || len(dobDigits) != 8 {
		return nil
	}

	ddmm := dobDigits[0:2] + dobDigits[2:4]
	ddmmyy := dobDigits[0:2] + dobDigits[2:4] + dobDigits[6:8]

	return []string{
		birthYear + ddmm,
		birthYear + ddmmyy,
	}
}

func nameFragmentCandidates(nameParts []string, dobDigits, phone string) []string {
	fullName := strings.Join(nameParts, "")
	if len(fullName) < 4 {
		return nil
	}

	first4 := fullName[:4]
	last4 := fullName[len(fullName)-4:]

	var candidates []string
	if len(dobDigits) >= 8 {
		ddmm := dobDigits[6:8] + dobDigits[4:6]
		ddmmyy := dobDigits[6:8] + dobDigits[4:6] + dobDigits[2:4]

		candidates = append(candidates,
			first4+ddmmyy,
			first4+ddmm,
			strings.ToUpper(first4)+ddmm,
			strings.ToUpper(first4)+ddmmyy,
		)
	}
	if len(phone) >= 4 {
		candidates = append(candidates, last4+phone[len(phone)-4:])
	}
	return candidates
}

func cardCandidates(cardLastFours []string, dobDigits string) []string {
	if len(dobDigits) < 8 {
		return nil
	}

	ddmm := dobDigits[6:8] + dobDigits[4:6]

	var candidates []string
	for _, last4 := range cardLastFours {
		candidates = append(candidates, last4+ddmm)
	}
	return candidates
}

// dateForms returns the date-of-birth string with each separator style
// stripped.
func dateForms(dob string) []string {
	return []string{
		strings.ReplaceAll(dob, "-", ""),
		strings.ReplaceAll(dob, "/", ""),
		strings.ReplaceAll(dob, ".", ""),
	}
}

func dateFormCandidates(dob string) []string {
	var candidates []string
	for _, form := range dateForms(dob) {
		if len(form) < 2 {
			continue
		}
		candidates = append(candidates, form, form[len(form)-2:])
		if len(form) >= 4 {
			candidates = append(candidates, form[len(form)-4:])
		}
	}
	return candidates
}

func namePartCandidates(nameParts []string) []string {
	var candidates []string
	for _, part := range nameParts {
		candidates = append(candidates, part, capitalize(part), strings.ToUpper(part))
	}
	return candidates
}

func phoneCandidates(phone string) []string {
	if len(phone) < 4 {
		return nil
	}

	candidates := []string{phone, phone[len(phone)-4:]}
	if len(phone) >= 6 {
		candidates = append(candidates, phone[len(phone)-6:])
	}
	if len(phone) >= 8 {
		candidates = append(candidates, phone[len(phone)-8:])
	}
	return candidates
}

func nameDateCandidates(nameParts []string, dob string) []string {
	var candidates []string
	for _, part := range nameParts {
		for _, form := range dateForms(dob) {
			if form == "" {
				continue
			}
			candidates = append(candidates,
				part+form,
				capitalize(part)+form,
				form+part,
			)
			if len(form) >= 4 {
				candidates = append(candidates, part+form[len(form)-4:])
			}
			if len(form) >= 2 {
				candidates = append(candidates, part+form[len(form)-2:])
			}
		}
	}
	return candidates
}

func namePhoneCandidates(nameParts []string, phone string) []string {
	if len(phone) < 4 {
		return nil
	}

	last4 := phone[len(phone)-4:]

	var candidates []string
	for _, part := range nameParts {
		candidates = append(candidates,
			part+last4,
			capitalize(part)+last4,
			last4+part,
		)
	}
	return candidates
}

func birthYearNameCandidates(birthYear string, hasYear bool, nameParts []string) []string {
	if !hasYear {
		return nil
	}

	year2 := birthYear[len(birthYear)-2:]
	candidates := []string{birthYear, year2}

	for _, part := range nameParts {
		candidates = append(candidates,
			birthYear+part,
			part+birthYear,
			year2+part,
			part+year2,
		)
	}
	return candidates
}

func splitNameParts(name string) []string {
	var parts []string
	for _, part := range strings.Fields(strings.ToLower(name)) {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// dedupeStable removes duplicates and empty strings while preserving
// first-seen order.
func dedupeStable(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	var unique []string
	for _, c := range candidates {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}
	return unique
}
