// Package website analyzes a company website: it fetches the page, strips
// the HTML down to text, and asks the extraction engine for a structured
// company summary.
package website

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/lead-search/internal/engine"
)

const (
	fetchTimeout = 10 * time.Second
	// maxContentChars bounds how much page text is sent to the engine.
	maxContentChars = 30000

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Analyzer fetches and analyzes company websites.
type Analyzer struct {
	engine engine.Engine
	client *http.Client
}

// NewAnalyzer creates a website analyzer.
func NewAnalyzer(eng engine.Engine) *Analyzer {
	return &Analyzer{
		engine: eng,
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Analyze fetches the URL and returns the engine's analysis of the company
// and any contact details found on the page.
func (a *Analyzer) Analyze(ctx context.Context, url string) (string, error) {
	content, err := a.fetchText(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch website content: %w", err)
	}

	prompt := buildAnalysisPrompt(url, content)
	result, err := a.engine.Generate(ctx, prompt, engine.Content{}, engine.GenerateOptions{
		Temperature:     0.3,
		MaxOutputTokens: 4096,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// fetchText downloads the page and reduces it to visible text.
func (a *Analyzer) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch website: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}
	return text, nil
}

func buildAnalysisPrompt(url, content string) string {
	return fmt.Sprintf(`You are an expert lead generation AI assistant. Analyze the following website content and extract all relevant company information and contact details that could be useful for B2B sales and lead generation.

Website URL: %s

Website Content:
%s

Please analyze this website and provide:

1. **Company Information:**
   - Company name
   - Industry/sector
   - Company description
   - Products or services offered
   - Company size (if available)
   - Location/headquarters
   - Website URL

2. **Contact Information:**
   - Names, titles, emails, and phone numbers found on the page
   - Any LinkedIn or social profile links

3. **Lead Quality Assessment:**
   - How complete the available information is
   - Suggested next steps for outreach`, url, content)
}
