package extraction

import (
	"regexp"
	"strings"

	"github.com/jonathan/lead-search/internal/types"
)

// fallbackConfidence marks leads produced by pattern matching rather than
// structured extraction.
const fallbackConfidence = 0.3

const fallbackNote = "This lead was extracted using fallback pattern matching and may be incomplete or inaccurate."

var (
	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Company|회사|기업|업체)[:\s]+([^\n,]+)`),
		regexp.MustCompile(`(?i)(?:Name|이름)[:\s]+([^\n,]+)`),
	}
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Phone|전화|Tel)[:\s]*([\d\-+() ]+)`),
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
	}
)

// fallbackExtract scans prose output for company-name cues, email addresses
// and phone-like sequences, pairing each discovered company with one
// unclaimed email and phone. The engine is not guaranteed to return valid
// JSON, so this path lets the system degrade gracefully instead of returning
// nothing.
func fallbackExtract(raw string) []types.Lead {
	companies := collectMatches(raw, companyPatterns, 1, 3)
	if len(companies) == 0 {
		return []types.Lead{}
	}

	emails := collectMatches(raw, []*regexp.Regexp{emailPattern}, 0, 1)
	phones := collectMatches(raw, phonePatterns, -1, 8)

	leads := make([]types.Lead, 0, len(companies))
	for _, company := range companies {
		contact := types.Contact{Name: "Contact"}
		if len(emails) > 0 {
			contact.Email = emails[0]
			emails = emails[1:]
		}
		if len(phones) > 0 {
			contact.Phone = phones[0]
			phones = phones[1:]
		}

		leads = append(leads, types.Lead{
			Company:     types.Company{Name: company},
			Contacts:    []types.Contact{contact},
			Source:      "fallback-extraction",
			Confidence:  fallbackConfidence,
			ExtractedAt: timeNow(),
			Notes:       fallbackNote,
		})
	}
	return leads
}

// collectMatches returns deduplicated matches in document order. group -1
// means use the capture group if present, else the whole match; minLen drops
// too-short matches.
func collectMatches(raw string, patterns []*regexp.Regexp, group, minLen int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		for _, m := range pattern.FindAllStringSubmatch(raw, -1) {
			value := m[0]
			if group > 0 && group < len(m) {
				value = m[group]
			} else if group == -1 && len(m) > 1 && m[1] != "" {
				value = m[1]
			}
			value = strings.TrimSpace(value)
			if len(value) < minLen || seen[value] {
				continue
			}
			seen[value] = true
			out = append(out, value)
		}
	}
	return out
}
