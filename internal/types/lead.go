// Package types provides type definitions for structured data used throughout the lead-search system.
package types

import (
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Contact represents one person at a company.
type Contact struct {
	Name     string `json:"name" validate:"required,min=1"`
	Title    string `json:"title,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
}

// Company represents one organization extracted from a document.
type Company struct {
	Name        string `json:"name" validate:"required,min=1"`
	Industry    string `json:"industry,omitempty"`
	Size        string `json:"size,omitempty"`
	Website     string `json:"website,omitempty" validate:"omitempty,url"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// LeadMetadata holds optional provenance details for a lead.
type LeadMetadata struct {
	DocumentType string   `json:"documentType,omitempty"`
	DocumentURL  string   `json:"documentUrl,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// Lead is the unit of extraction output: one company plus at least one contact,
// with provenance and the engine's self-reported confidence.
type Lead struct {
	Company     Company       `json:"company"`
	Contacts    []Contact     `json:"contacts" validate:"required,min=1,dive"`
	Source      string        `json:"source" validate:"required"`
	Confidence  float64       `json:"confidence" validate:"min=0,max=1"`
	ExtractedAt time.Time     `json:"extractedAt,omitempty"`
	Metadata    *LeadMetadata `json:"metadata,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

// Validate validates the Lead using the validator.
func (l *Lead) Validate() error {
	validate := validator.New()
	return validate.Struct(l)
}

// Validate validates the Contact using the validator.
func (c *Contact) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// Validate validates the Company using the validator.
func (c *Company) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// AverageConfidence computes the mean confidence over a set of leads.
// Returns 0 for an empty set.
func AverageConfidence(leads []Lead) float64 {
	if len(leads) == 0 {
		return 0
	}
	var sum float64
	for _, lead := range leads {
		sum += lead.Confidence
	}
	return sum / float64(len(leads))
}

// AccuracyMetrics summarizes the quality of a set of extracted leads.
type AccuracyMetrics struct {
	EstimatedAccuracy  float64 `json:"estimatedAccuracy"`
	LowConfidenceCount int     `json:"lowConfidenceCount"`
	AverageConfidence  float64 `json:"averageConfidence"`
}

// lowConfidenceThreshold marks leads that likely need manual review.
const lowConfidenceThreshold = 0.6

// CalculateAccuracyMetrics estimates extraction accuracy from confidence
// scores (70% weight) and data completeness (30% weight).
func CalculateAccuracyMetrics(leads []Lead) AccuracyMetrics {
	if len(leads) == 0 {
		return AccuracyMetrics{}
	}

	var confidenceSum, completenessSum float64
	lowConfidence := 0

	for _, lead := range leads {
		confidenceSum += lead.Confidence
		if lead.Confidence < lowConfidenceThreshold {
			lowConfidence++
		}

		var score float64
		if leadHasEmail(lead) {
			score += 0.3
		}
		if leadHasPhone(lead) {
			score += 0.2
		}
		if lead.Company.Website != "" {
			score += 0.2
		}
		if lead.Company.Industry != "" {
			score += 0.15
		}
		if lead.Company.Location != "" {
			score += 0.15
		}
		completenessSum += score
	}

	avgConfidence := confidenceSum / float64(len(leads))
	avgCompleteness := completenessSum / float64(len(leads))

	return AccuracyMetrics{
		EstimatedAccuracy:  avgConfidence*0.7 + avgCompleteness*0.3,
		LowConfidenceCount: lowConfidence,
		AverageConfidence:  avgConfidence,
	}
}

func leadHasEmail(lead Lead) bool {
	for _, c := range lead.Contacts {
		if c.Email != "" {
			return true
		}
	}
	return false
}

func leadHasPhone(lead Lead) bool {
	for _, c := range lead.Contacts {
		if c.Phone != "" {
			return true
		}
	}
	return false
}

// Equal reports whether two leads have identical content, ignoring the
// parser-assigned ExtractedAt timestamp.
func (l *Lead) Equal(other *Lead) bool {
	if l.Company != other.Company || l.Source != other.Source ||
		l.Confidence != other.Confidence || l.Notes != other.Notes {
		return false
	}
	if len(l.Contacts) != len(other.Contacts) {
		return false
	}
	for i := range l.Contacts {
		if l.Contacts[i] != other.Contacts[i] {
			return false
		}
	}
	if (l.Metadata == nil) != (other.Metadata == nil) {
		return false
	}
	if l.Metadata != nil {
		if l.Metadata.DocumentType != other.Metadata.DocumentType ||
			l.Metadata.DocumentURL != other.Metadata.DocumentURL ||
			!slices.Equal(l.Metadata.Keywords, other.Metadata.Keywords) {
			return false
		}
	}
	return true
}

// DerivedID returns a stable identifier derived from the company name and
// first contact name, lowercased and slugified. Used for favoriting in the
// UI layer; leads otherwise have no identity beyond their content.
func (l *Lead) DerivedID() string {
	first := ""
	if len(l.Contacts) > 0 {
		first = l.Contacts[0].Name
	}
	return slugify(l.Company.Name) + "-" + slugify(first)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
