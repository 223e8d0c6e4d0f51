// Package extract turns the OCR text of a business card into a CardRecord.
package extract

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"cardreader/internal/models"
)

// mobileRe takes digits and spaces in the Unicode sense, so NBSP-separated
// numbers match.
var (
	emailRe  = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`)
	mobileRe = regexp.MustCompile(`\+?\p{Nd}[\p{Nd}\s\x{0B}\x{1C}-\x{1F}\x{85}\p{Z}-]{8,}`)
)

// Airlines is searched in order; the first name found anywhere in the text wins.
var Airlines = []string{
	"Air India",
	"IndiGo",
	"SpiceJet",
	"Vistara",
	"Akasa Air",
	"Emirates",
	"Qatar Airways",
	"Etihad",
	"Lufthansa",
	"British Airways",
	"Air France",
	"KLM",
	"Singapore Airlines",
	"Cathay Pacific",
	"Turkish Airlines",
	"United Airlines",
	"American Airlines",
	"Delta Air Lines",
	"Qantas",
	"Thai Airways",
}

// Extractor produces a CardRecord from recognised text.
type Extractor interface {
	Extract(ctx context.Context, text string) (models.CardRecord, error)
}

// Regex is the default Extractor; it never fails.
type Regex struct{}

func (Regex) Extract(_ context.Context, text string) (models.CardRecord, error) {
	return Fields(text), nil
}

// Fields applies the positional and pattern heuristics to text.
//
// Lines are counted after trimming and dropping blanks: the first is the name,
// the second the designation, and lines three to five form the address, but
// only when at least five lines exist.
func Fields(text string) models.CardRecord {
	lines := Lines(text)

	var rec models.CardRecord
	if len(lines) > 0 {
		rec.Name = lines[0]
	}
	if len(lines) > 1 {
		rec.Designation = lines[1]
	}
	if len(lines) > 4 {
		rec.Address = strings.Join(lines[2:5], ", ")
	}
	rec.Email = emailRe.FindString(text)
	rec.Mobile = findMobile(text)
	rec.Airline = FindAirline(text)
	return rec
}

// Lines splits text into trimmed, non-empty lines in their original order.
func Lines(text string) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if l := strings.TrimSpace(ln); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// findMobile returns the first phone-like run. The character class also eats
// the separator that follows the number, so trailing whitespace is cut.
func findMobile(text string) string {
	return strings.TrimRightFunc(mobileRe.FindString(text), isMobileSpace)
}

func isMobileSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.Is(unicode.Z, r) || (r >= 0x1C && r <= 0x1F)
}

// FindAirline reports the first entry of Airlines contained in text, ignoring case.
func FindAirline(text string) string {
	lower := strings.ToLower(text)
	for _, name := range Airlines {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}
