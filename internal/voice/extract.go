package voice

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var numeralPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// boundaryWords end a prepositional phrase. "meeting" is not one: it is part
// of destinations like "ABC Corp Toronto meeting".
var boundaryWords = map[string]bool{
	"from":    true,
	"to":      true,
	"at":      true,
	"with":    true,
	"for":     true,
	"purpose": true,
	"in":      true,
}

// lodgingWords mark the accommodation name inside a transcript.
var lodgingWords = map[string]bool{
	"hotel":  true,
	"inn":    true,
	"resort": true,
	"motel":  true,
}

// amountWords stop a lodging name from reaching back into the amount.
var amountWords = map[string]bool{
	"dollars": true,
	"dollar":  true,
	"bucks":   true,
	"cad":     true,
	"usd":     true,
}

// ExtractNumbers returns every numeral in the text, left to right. Currency
// symbols and thousands are not interpreted; "$1,200" yields 1 and 200.
func ExtractNumbers(text string) []decimal.Decimal {
	matches := numeralPattern.FindAllString(text, -1)
	out := make([]decimal.Decimal, 0, len(matches))
	for _, m := range matches {
		d, err := decimal.NewFromString(m)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

// numberAt returns nums[i] or zero.
func numberAt(nums []decimal.Decimal, i int) decimal.Decimal {
	if i < len(nums) {
		return nums[i]
	}
	return decimal.Zero
}

// ExtractPhrase returns the words following the first whole-word, case
// insensitive occurrence of keyword, up to the end of its clause or the next
// boundary word. Occurrences with nothing after them are skipped. The result
// is "" when no occurrence yields a phrase.
func ExtractPhrase(text, keyword string) string {
	keyword = strings.ToLower(keyword)
	for _, clause := range clauses(text) {
		for i, w := range clause {
			if normalizeWord(w) != keyword {
				continue
			}
			if phrase := collectUntilBoundary(clause[i+1:]); phrase != "" {
				return phrase
			}
		}
	}
	return ""
}

// ExtractLodging returns the phrase around the first lodging keyword: the
// words before it back to a boundary word, numeral or amount unit, the
// keyword itself and the words after it up to a boundary word.
func ExtractLodging(text string) string {
	for _, clause := range clauses(text) {
		for i, w := range clause {
			if !lodgingWords[normalizeWord(w)] {
				continue
			}
			start := i
			for start > 0 && !stopsLodgingName(clause[start-1]) {
				start--
			}
			end := i + 1
			for end < len(clause) && !boundaryWords[normalizeWord(clause[end])] {
				end++
			}
			return strings.Join(clause[start:end], " ")
		}
	}
	return ""
}

func stopsLodgingName(w string) bool {
	n := normalizeWord(w)
	return boundaryWords[n] || amountWords[n] || numeralPattern.MatchString(n)
}

func collectUntilBoundary(words []string) string {
	var out []string
	for _, w := range words {
		if boundaryWords[normalizeWord(w)] {
			break
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// clauses splits text at commas and sentence terminators and returns the
// words of each clause. A dot between two digits is a decimal point.
func clauses(text string) [][]string {
	var (
		out     [][]string
		current strings.Builder
	)
	flush := func() {
		if words := strings.Fields(current.String()); len(words) > 0 {
			out = append(out, words)
		}
		current.Reset()
	}
	runes := []rune(text)
	for i, r := range runes {
		switch r {
		case ',', '!', '?', ';':
			flush()
			continue
		case '.':
			if i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				current.WriteRune(r)
				continue
			}
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return out
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}

// stripNumerals removes numerals and currency symbols and collapses spaces.
func stripNumerals(text string) string {
	text = numeralPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "$", "")
	return strings.Join(strings.Fields(text), " ")
}
