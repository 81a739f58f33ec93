package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const dailyCheckPrompt = `Please give me a complete compliance status report:

1. First, call get_compliance_summary to get the overall status
2. If there are failing monitors, call list_failing_monitors to see details
3. If there are personnel issues, call list_personnel_with_issues
4. Summarize what needs my immediate attention today

Format the response as an actionable task list prioritized by urgency.`

const auditPrompt = `I need to prepare for an upcoming SOC2 Type II audit. Please:

1. Get the overall compliance summary
2. List ALL failing monitors with details
3. List ALL personnel with device compliance issues
4. List all connections and their status
5. List pending policy acknowledgments

For each issue found, explain:
- What the issue is
- Why it matters for SOC2
- Suggested remediation steps
- Who should own the fix

Organize by priority: Critical, High, Medium, Low.`

const investigateMonitorPrompt = `Please investigate monitor ID %s:

1. Get the full monitor details using get_monitor_details
2. Explain what this test is checking
3. Show the current status and failure reason if any
4. Provide the recommended remediation steps
5. List which controls are affected

Be thorough, I may need to present this to auditors.`

func (s *Server) addPrompts() {
	s.MCP.AddPrompt(
		mcp.NewPrompt("daily_compliance_check",
			mcp.WithPromptDescription("Start your day with a compliance status check."),
		),
		staticPrompt("Daily compliance check", dailyCheckPrompt),
	)
	s.MCP.AddPrompt(
		mcp.NewPrompt("prepare_for_audit",
			mcp.WithPromptDescription("Prepare a comprehensive audit readiness report."),
		),
		staticPrompt("Audit readiness report", auditPrompt),
	)
	s.MCP.AddPrompt(
		mcp.NewPrompt("investigate_monitor",
			mcp.WithPromptDescription("Deep dive into a specific monitor failure."),
			mcp.WithArgument("monitor_id",
				mcp.ArgumentDescription("The monitor id to investigate"),
				mcp.RequiredArgument(),
			),
		),
		func(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			id := strings.TrimSpace(req.Params.Arguments["monitor_id"])
			if id == "" {
				return nil, fmt.Errorf("monitor_id is required")
			}
			return userPrompt("Investigate monitor "+id, fmt.Sprintf(investigateMonitorPrompt, id)), nil
		},
	)
}

func staticPrompt(description, text string) func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return userPrompt(description, text), nil
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
