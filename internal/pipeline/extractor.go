package pipeline

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"
)

// Per-type pattern tables. Patterns are tried in listed order and the first
// match wins; every pattern is applied case-insensitively. When a pattern has
// capturing groups the first group is the captured value, otherwise the whole
// match is.
var (
	invoiceIDPatterns = []string{
		`INV[-\s]?\d{3,6}`,
		`Invoice\s*#?:?\s*(\w+-?\d+)`,
	}
	invoiceTotalPatterns = []string{
		`Total\s*[:\s]?\$?\s*([0-9,]+(?:\.\d{1,2})?)`,
		`Amount\s*Due\s*[:\s]?\$?\s*([0-9,]+(?:\.\d{1,2})?)`,
	}
	policyNumberPatterns = []string{
		`POL[-\s]?\d{4,8}`,
		`Policy\s*No\.?\s*[:\s]?(?:\w+-?\d+)`,
	}
	dateOfLossPatterns = []string{
		`(?:Date\s+of\s+(?:Loss|Accident))[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
	}
	vehicleVINPatterns = []string{
		`VIN[:\s]*([A-HJ-NPR-Za-hj-npr-z0-9-]{11,17})`,
	}
	assessedDamagePatterns = []string{
		`Assessed\s+Damage\s*[:\s]?\$?\s*([0-9,]+(?:\.\d{1,2})?)`,
		`Damage\s+Estimate\s*[:\s]?\$?\s*([0-9,]+(?:\.\d{1,2})?)`,
	}
)

// dateLayouts is the ordered fallback chain for normalizing a captured loss
// date to ISO form. The first layout that parses wins; if none do, the raw
// captured string is kept as-is. Single-digit day/month values are accepted.
var dateLayouts = []string{
	"2/1/2006", // DD/MM/YYYY
	"2-1-2006", // DD-MM-YYYY
	"1/2/2006", // MM/DD/YYYY
	"2006-1-2", // YYYY-MM-DD
}

// nonMoneyChars strips everything that is not a digit or decimal point
// before money parsing.
var nonMoneyChars = regexp.MustCompile(`[^0-9.]`)

// Extractor pulls typed key-value fields out of a classified document's text
// using per-type ordered pattern tables.
type Extractor struct {
	Logger *slog.Logger
}

// NewExtractor returns an Extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{Logger: logger}
}

// Extract returns the field map for one logical document. Extraction is
// text-pattern based: with no non-empty text available the result carries a
// structured "error" entry instead of fields (images alone are not enough,
// unlike classification). Unknown types also yield an "error" entry. Neither
// case aborts the packet.
func (e *Extractor) Extract(docType DocType, texts []string) map[string]any {
	text := joinNonEmpty(texts, "\n")
	if text == "" {
		return map[string]any{"error": "No text provided for extraction"}
	}

	switch docType {
	case DocTypeInvoice:
		return e.extractInvoice(text)
	case DocTypeClaimForm:
		return e.extractClaimForm(text)
	case DocTypeInspectionReport:
		return e.extractInspectionReport(text)
	default:
		return map[string]any{"error": fmt.Sprintf("Unsupported doc_type: %s", docType)}
	}
}

func (e *Extractor) extractInvoice(text string) map[string]any {
	id, _ := e.searchPatterns(text, invoiceIDPatterns)
	totalRaw, _ := e.searchPatterns(text, invoiceTotalPatterns)
	return map[string]any{
		"invoice_id":    nullable(id),
		"invoice_total": moneyValue(totalRaw),
		"raw_total_str": nullable(totalRaw),
	}
}

func (e *Extractor) extractClaimForm(text string) map[string]any {
	policy, _ := e.searchPatterns(text, policyNumberPatterns)
	dateRaw, _ := e.searchPatterns(text, dateOfLossPatterns)
	return map[string]any{
		"policy_number": nullable(policy),
		"date_of_loss":  nullable(normalizeDate(dateRaw)),
	}
}

func (e *Extractor) extractInspectionReport(text string) map[string]any {
	vin, _ := e.searchPatterns(text, vehicleVINPatterns)
	assessedRaw, _ := e.searchPatterns(text, assessedDamagePatterns)
	return map[string]any{
		"vehicle_vin":           nullable(vin),
		"assessed_damage_value": moneyValue(assessedRaw),
		"raw_assessed_str":      nullable(assessedRaw),
	}
}

// searchPatterns tries each pattern in order and returns the first captured
// value. Patterns are compiled here rather than at init so a malformed entry
// in a table is skipped with a warning instead of taking the process down or
// aborting the remaining fields.
func (e *Extractor) searchPatterns(text string, patterns []string) (string, bool) {
	for _, p := range patterns {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			e.Logger.Warn("extractor.pattern.invalid", "pattern", p, "error", err)
			continue
		}
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if re.NumSubexp() > 0 {
			return m[1], true
		}
		return m[0], true
	}
	return "", false
}

// parseMoney normalizes a captured money string to a float: strip everything
// but digits and decimal points, then parse. Empty or unparsable input yields
// nil, never an error.
func parseMoney(raw string) *float64 {
	if raw == "" {
		return nil
	}
	cleaned := nonMoneyChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}

// normalizeDate tries the layout fallback chain and returns the ISO date of
// the first layout that parses, or raw unchanged when none do.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// nullable maps an empty capture to JSON null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// moneyValue maps a captured money string to a float64 or JSON null.
func moneyValue(raw string) any {
	if f := parseMoney(raw); f != nil {
		return *f
	}
	return nil
}
