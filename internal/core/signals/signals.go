// Package signals extracts the concrete escalation signals the orchestrator
// reads from stage payloads, and scans synthesis output for unresolved-work
// markers. Payloads are semi-structured; every accessor tolerates missing or
// differently-typed fields and never assumes schema beyond the field it reads.
package signals

import "strings"

// ComplianceApproved is the only compliance status that clears the blocking
// check. Matching is case-insensitive; a missing status counts as approved so
// an unparseable compliance payload does not block the run on its own.
const ComplianceApproved = "APPROVED"

// ComplianceStatus returns the compliance stage's status field, or
// ComplianceApproved when absent.
func ComplianceStatus(payload map[string]any) string {
	if s, ok := payload["compliance_status"].(string); ok && s != "" {
		return s
	}
	return ComplianceApproved
}

// IsApproved reports whether a compliance status clears the blocking check.
func IsApproved(status string) bool {
	return strings.EqualFold(status, ComplianceApproved)
}

// ComplianceSummary returns the compliance stage's narrative summary, if any.
func ComplianceSummary(payload map[string]any) string {
	s, _ := payload["summary"].(string)
	return s
}

// CustomBuilds returns the custom-build requirements listed by the
// feasibility stage. It reads feasibility_summary.custom_builds, falling
// back to a top-level custom_builds list.
func CustomBuilds(payload map[string]any) []string {
	if summary, ok := payload["feasibility_summary"].(map[string]any); ok {
		if builds := stringList(summary["custom_builds"]); builds != nil {
			return builds
		}
	}
	return stringList(payload["custom_builds"])
}

// DealRisk returns the economics stage's risk classification, uppercased.
func DealRisk(payload map[string]any) string {
	s, _ := payload["deal_risk"].(string)
	return strings.ToUpper(s)
}

// IsHighRisk reports whether a deal risk classification is escalation-worthy.
func IsHighRisk(risk string) bool {
	return risk == "HIGH" || risk == "CRITICAL"
}

// Recommendation returns the economics stage's actionable recommendation.
func Recommendation(payload map[string]any) string {
	s, _ := payload["recommendation"].(string)
	return s
}

// DetectedIndustry returns the industry the strategist detected, reading
// industry_detection.detected_industry with a top-level fallback. Returns
// "general" when the strategist did not report one.
func DetectedIndustry(payload map[string]any) string {
	if detection, ok := payload["industry_detection"].(map[string]any); ok {
		if s, ok := detection["detected_industry"].(string); ok && s != "" {
			return s
		}
	}
	if s, ok := payload["detected_industry"].(string); ok && s != "" {
		return s
	}
	return "general"
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
