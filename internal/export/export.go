// Package export renders extracted leads as downloadable CSV, JSON, or XLSX
// documents, flattening each lead into one row per contact.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/lead-search/internal/types"
)

// Format is a supported export format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat indicates an unknown export format.
var ErrUnsupportedFormat = fmt.Errorf(`unsupported format; use "csv", "json" or "xlsx"`)

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Filename returns a timestamped attachment filename for a format.
func (f Format) Filename() string {
	return fmt.Sprintf("leads_export_%d.%s", time.Now().UnixMilli(), f)
}

// columns is the fixed header order for tabular exports.
var columns = []string{
	"company_name",
	"company_industry",
	"company_size",
	"company_website",
	"company_location",
	"company_description",
	"contact_name",
	"contact_title",
	"contact_email",
	"contact_phone",
	"contact_linkedin",
	"source_document",
	"confidence_score",
	"extracted_at",
}

// Render serializes leads in the requested format.
func Render(leads []types.Lead, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return toCSV(leads)
	case FormatJSON:
		return json.MarshalIndent(leads, "", "  ")
	case FormatXLSX:
		return toXLSX(leads)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// flatten produces one row per contact, repeating the company columns. A
// lead without contacts still yields one row for the company.
func flatten(leads []types.Lead) [][]string {
	var rows [][]string
	for _, lead := range leads {
		extractedAt := ""
		if !lead.ExtractedAt.IsZero() {
			extractedAt = lead.ExtractedAt.Format(time.RFC3339)
		}
		base := []string{
			lead.Company.Name,
			lead.Company.Industry,
			lead.Company.Size,
			lead.Company.Website,
			lead.Company.Location,
			lead.Company.Description,
		}
		tail := []string{
			lead.Source,
			strconv.FormatFloat(lead.Confidence, 'f', -1, 64),
			extractedAt,
		}

		if len(lead.Contacts) == 0 {
			row := append(append(append([]string{}, base...), "", "", "", "", ""), tail...)
			rows = append(rows, row)
			continue
		}
		for _, contact := range lead.Contacts {
			row := append(append(append([]string{}, base...),
				contact.Name, contact.Title, contact.Email, contact.Phone, contact.LinkedIn),
				tail...)
			rows = append(rows, row)
		}
	}
	return rows
}

func toCSV(leads []types.Lead) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range flatten(leads) {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func toXLSX(leads []types.Lead) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Leads"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, row := range flatten(leads) {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
