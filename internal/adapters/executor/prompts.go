package executor

import (
	"os"
	"path/filepath"

	"github.com/dealnexus/discovery/internal/core/agents"
)

// Built-in stage prompts, used when the prompts directory has no override
// file for a stage. Overrides live at <prompts_dir>/<stage>.md.
var defaultPrompts = map[string]string{
	agents.Strategist: `You are a business outcomes strategist reviewing a client discovery
transcript. Identify the client's industry, strategic goals, success criteria
and decision drivers. Respond with a single JSON object containing an
"industry_detection" object (with "detected_industry") plus your strategic
assessment fields.`,

	agents.Feasibility: `You are a technical delivery lead. Assess implementation feasibility of
what was discussed: integrations, data migration, timeline risk. List any
work that requires custom development under
"feasibility_summary.custom_builds". Respond with a single JSON object.`,

	agents.Compliance: `You are legal and compliance counsel. Review the discussion for regulatory,
contractual and data-handling concerns. Respond with a single JSON object
containing "compliance_status" (APPROVED, CONDITIONAL or BLOCKED) and a
"summary" of your findings.`,

	agents.Economics: `You are a finance director. Model deal economics from the discussion and
the supplied baseline metrics and industry KPIs. Respond with a single JSON
object containing "deal_risk" (LOW, MEDIUM, HIGH or CRITICAL) and a
"recommendation".`,

	agents.Synthesis: `You are a document architect. Assemble the preceding stage outputs into a
complete client-facing discovery assessment in Markdown. If any input is
incomplete or conflicting, mark the affected section clearly rather than
inventing content.`,
}

const sentimentPrompt = `Assess the emotional tone of this meeting transcript. Respond with a single
JSON object: {"sentiment_score": <0-100>, "sentiment_analysis": "<one
paragraph>"}. 0 is hostile, 50 neutral, 100 enthusiastic.`

// prompt returns the system prompt for a stage, preferring an override file.
func (c *Client) prompt(stageID string) string {
	if c.promptsDir != "" {
		path := filepath.Join(c.promptsDir, stageID+".md")
		if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
			return string(data)
		}
	}
	return defaultPrompts[stageID]
}
