package pipeline

import (
	"fmt"
	"regexp"
)

// amountTolerance bounds the acceptable gap between an invoiced amount and
// the assessed damage value. Invoices up to 15% above the assessment pass;
// normal rounding and partial-repair discrepancies stay under it.
const amountTolerance = 1.15

// canonicalPolicyRe is the shape a captured policy number must conform to.
// This intentionally checks the captured value, not the extraction pattern:
// extraction may capture via a group whose content no longer carries the
// "POL-" prefix context.
var canonicalPolicyRe = regexp.MustCompile(`(?i)POL[-\s]?\d{4,8}`)

// Validate evaluates the fixed cross-document rule set over all extracted
// records of a packet and returns the overall status with an ordered list of
// human-readable flags. It always succeeds; rules are independent and each
// appends at most one flag. Only the first record of each type is considered.
func Validate(records []ExtractedRecord) (string, []string) {
	flags := []string{}

	invoice := findData(records, DocTypeInvoice)
	claim := findData(records, DocTypeClaimForm)
	report := findData(records, DocTypeInspectionReport)

	if claim == nil {
		flags = append(flags, "CRITICAL: Missing Claim Form.")
	}
	if invoice == nil {
		flags = append(flags, "CRITICAL: Missing Invoice.")
	}

	if invoice != nil && report != nil {
		invTotal := numericField(invoice, "invoice_total")
		assessed := numericField(report, "assessed_damage_value")
		if invTotal != nil && assessed != nil && *invTotal > *assessed*amountTolerance {
			diff := *invTotal - *assessed
			flags = append(flags, fmt.Sprintf(
				"Amount Discrepancy: Invoice total $%.2f exceeds assessed value $%.2f by $%.2f.",
				*invTotal, *assessed, diff))
		}
	}

	if claim != nil {
		if pol, _ := claim["policy_number"].(string); pol != "" && !canonicalPolicyRe.MatchString(pol) {
			flags = append(flags, "Suspicious policy number format.")
		}
	}

	if len(flags) == 0 {
		return StatusApproved, flags
	}
	return StatusNeedsManualReview, flags
}

// findData returns the field map of the first record with the given type,
// or nil when the packet has none.
func findData(records []ExtractedRecord, t DocType) map[string]any {
	for _, r := range records {
		if r.Type == t {
			return r.Data
		}
	}
	return nil
}

// numericField reads a field as a float. Non-numeric, zero, or absent values
// return nil so the discrepancy rule only fires on two real amounts.
func numericField(data map[string]any, key string) *float64 {
	v, ok := data[key]
	if !ok || v == nil {
		return nil
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	default:
		return nil
	}
	if f == 0 {
		return nil
	}
	return &f
}
