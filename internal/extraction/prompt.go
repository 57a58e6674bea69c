// Package extraction turns documents into validated leads: it builds the
// extraction prompt, selects a transfer strategy, drives the engine, and
// parses the completion into Lead records with salvage and fallback paths.
package extraction

import "fmt"

// SystemInstruction is the fixed system prompt for lead extraction.
const SystemInstruction = `You are an expert lead extraction AI assistant. Your task is to analyze documents and extract structured information about companies and their contacts.

**Important Guidelines:**
1. Only extract information that is explicitly stated in the documents
2. Do not make assumptions or infer information that isn't clearly present
3. For each lead, provide a confidence score (0.0 to 1.0) based on:
   - Completeness of information (higher score for more complete data)
   - Clarity of the source material (higher score for explicit mentions)
   - Consistency across the document (higher score for consistent information)
4. Extract multiple contacts per company if available
5. Validate email addresses and phone numbers format
6. Look for contact information in signatures, letterheads, business cards, proposals, invoices, contracts, and correspondence
7. Always return valid JSON in the specified format`

// extractionPrompt is the generic extraction template.
const extractionPrompt = `Analyze the provided documents and extract structured information about companies and their contacts.

Extract the following information for each lead:

**Company Information:**
- Company name (required)
- Industry/sector
- Company size (e.g., "1-10 employees", "50-200 employees", "1000+ employees")
- Website URL
- Location (city, state, country)
- Brief description

**Contact Information:**
- Contact name (required)
- Job title/position
- Email address
- Phone number
- LinkedIn profile URL

Return results as a JSON object with this structure:
{
  "leads": [
    {
      "company": {
        "name": "Acme Corporation",
        "industry": "Technology",
        "size": "50-200 employees",
        "website": "https://www.acme.com",
        "location": "San Francisco, CA, USA",
        "description": "Software development company"
      },
      "contacts": [
        {
          "name": "John Doe",
          "title": "CEO",
          "email": "john.doe@acme.com",
          "phone": "+1-555-0123",
          "linkedin": "https://linkedin.com/in/johndoe"
        }
      ],
      "source": "document_name",
      "confidence": 0.95
    }
  ]
}`

// BuildPrompt returns the extraction prompt, adding a query-targeted section
// when a specific query is supplied.
func BuildPrompt(query string) string {
	if query == "" {
		return extractionPrompt
	}
	return fmt.Sprintf(`%s

**Specific Query:** %s

Focus on extracting leads that match or relate to this query. Prioritize results that are most relevant to the search criteria.`, extractionPrompt, query)
}
