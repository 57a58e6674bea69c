package extraction

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/lead-search/internal/types"
)

// timeNow is swapped in tests.
var timeNow = time.Now

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	leadsObjRe   = regexp.MustCompile(`(?s)\{.*"leads".*\}`)
)

var fieldValidator = validator.New()

// ParseLeads parses an engine completion into validated leads. It never
// fails: malformed elements are salvaged where possible, and a completion
// with no parseable JSON at all goes through the pattern-matching fallback.
func ParseLeads(raw string) []types.Lead {
	elements, ok := decodeLeadElements(raw)
	if !ok || len(elements) == 0 {
		return fallbackExtract(raw)
	}

	leads := make([]types.Lead, 0, len(elements))
	for _, element := range elements {
		if lead := parseElement(element); lead != nil {
			leads = append(leads, *lead)
		}
	}

	if len(leads) == 0 {
		return fallbackExtract(raw)
	}
	return leads
}

// decodeLeadElements locates and decodes the leads array in the completion:
// direct JSON first, then a fenced code block, then the first substring that
// looks like an object containing a "leads" key.
func decodeLeadElements(raw string) ([]any, bool) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		candidate := raw
		if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
			candidate = m[1]
		} else if m := leadsObjRe.FindString(raw); m != "" {
			candidate = m
		}
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			return nil, false
		}
	}

	switch v := parsed.(type) {
	case map[string]any:
		if arr, ok := v["leads"].([]any); ok {
			return arr, true
		}
		return nil, true
	case []any:
		return v, true
	default:
		return nil, true
	}
}

// parseElement validates one raw element against the lead schema, falling
// back to salvage when it does not conform.
func parseElement(element any) *types.Lead {
	valid, err := validateLeadElement(element)
	if err != nil {
		slog.Warn("lead schema check failed", "error", err)
	}
	if valid {
		data, err := json.Marshal(element)
		if err == nil {
			var lead types.Lead
			if err := json.Unmarshal(data, &lead); err == nil {
				lead.ExtractedAt = timeNow()
				return &lead
			}
		}
	}
	return salvageLead(element)
}

// salvageLead recovers a partially-valid record: it keeps the element when a
// non-empty company name and at least one nameable contact remain after
// stripping invalid optional fields, defaulting confidence to 0.5 and source
// to "unknown".
func salvageLead(element any) *types.Lead {
	m, ok := element.(map[string]any)
	if !ok {
		return nil
	}

	companyMap, _ := m["company"].(map[string]any)
	name := stringField(companyMap, "name")
	if name == "" {
		return nil
	}

	rawContacts, _ := m["contacts"].([]any)
	contacts := make([]types.Contact, 0, len(rawContacts))
	for _, rc := range rawContacts {
		cm, ok := rc.(map[string]any)
		if !ok {
			continue
		}
		contactName := stringField(cm, "name")
		if contactName == "" {
			continue
		}
		contact := types.Contact{
			Name:  contactName,
			Title: stringField(cm, "title"),
			Phone: stringField(cm, "phone"),
		}
		if email := stringField(cm, "email"); email != "" &&
			fieldValidator.Var(email, "email") == nil {
			contact.Email = email
		}
		if linkedin := stringField(cm, "linkedin"); linkedin != "" &&
			fieldValidator.Var(linkedin, "url") == nil {
			contact.LinkedIn = linkedin
		}
		contacts = append(contacts, contact)
	}
	if len(contacts) == 0 {
		return nil
	}

	company := types.Company{
		Name:        name,
		Industry:    stringField(companyMap, "industry"),
		Size:        stringField(companyMap, "size"),
		Location:    stringField(companyMap, "location"),
		Description: stringField(companyMap, "description"),
	}
	if website := stringField(companyMap, "website"); website != "" &&
		fieldValidator.Var(website, "url") == nil {
		company.Website = website
	}

	source := stringField(m, "source")
	if source == "" {
		source = "unknown"
	}
	confidence := 0.5
	if c, ok := m["confidence"].(float64); ok {
		confidence = c
	}

	return &types.Lead{
		Company:     company,
		Contacts:    contacts,
		Source:      source,
		Confidence:  confidence,
		ExtractedAt: timeNow(),
		Metadata:    salvageMetadata(m),
	}
}

func salvageMetadata(m map[string]any) *types.LeadMetadata {
	mm, ok := m["metadata"].(map[string]any)
	if !ok {
		return nil
	}
	meta := &types.LeadMetadata{
		DocumentType: stringField(mm, "documentType"),
		DocumentURL:  stringField(mm, "documentUrl"),
	}
	if kws, ok := mm["keywords"].([]any); ok {
		for _, kw := range kws {
			if s, ok := kw.(string); ok {
				meta.Keywords = append(meta.Keywords, s)
			}
		}
	}
	if meta.DocumentType == "" && meta.DocumentURL == "" && len(meta.Keywords) == 0 {
		return nil
	}
	return meta
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
