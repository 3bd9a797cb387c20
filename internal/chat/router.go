// Package chat implements the interactive front end that talks to a
// running t5gmcp server over MCP.
//
// Two assistants are available: a keyword router that maps a message to
// a single tool, and a Gemini assistant that lets the model pick the tool.
// Both sit behind the Assistant interface and are driven by Session.
package chat

import "strings"

// HelpText is the reply when no keyword matches.
const HelpText = "I can fetch cards, cases, bugs, issues, details, escalations, or full case data. " +
	"Ask me about any of those."

type route struct {
	keywords []string
	tool     string
}

// routes are checked in order; the first match wins. "case" must come
// after the more specific rules since "full case data" and "escalated
// case" contain it.
var routes = []route{
	{[]string{"full case data", "full_case_data", "all case data", "all_case_data", "enriched", "merged"}, "get_all_case_data"},
	{[]string{"escalation", "escalated"}, "get_escalations"},
	{[]string{"bug"}, "get_bugs"},
	{[]string{"issue"}, "get_issues"},
	{[]string{"detail"}, "get_details"},
	{[]string{"case"}, "get_cases"},
	{[]string{"card", "jira"}, "get_cards"},
}

// Route returns the tool a message asks for, or false when nothing
// matches. Matching is case-insensitive substring search.
func Route(message string) (string, bool) {
	text := strings.ToLower(message)
	for _, r := range routes {
		for _, k := range r.keywords {
			if strings.Contains(text, k) {
				return r.tool, true
			}
		}
	}
	return "", false
}
