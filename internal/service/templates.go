package service

import (
	"fmt"

	"github.com/citycare/issue-service/internal/domain"
)

const (
	timestampLayout      = "2006-01-02 15:04:05"
	passwordResetSubject = "City Care - Password Reset"
)

func issueTitle(status domain.IssueStatus, problem string) string {
	switch status {
	case domain.IssueStatusResolved:
		return "Issue Resolved: " + problem
	case domain.IssueStatusReport:
		return "Issue Report: " + problem
	}
	return ""
}

func renderStatusEmail(owner *domain.User, issue domain.Issue) string {
	updated := issue.UpdatedAt.UTC().Format(timestampLayout)
	if issue.Status == domain.IssueStatusResolved {
		return fmt.Sprintf(`Dear %s,

Great news! Your reported issue has been resolved.

Issue Details:
- Problem: %s
- Location: %s
- Status: %s
- Resolved on: %s

Thank you for helping make our city better!

Best regards,
City Care Team
`, owner.Name, issue.Problem, issue.Location, issue.Status, updated)
	}
	return fmt.Sprintf(`Dear %s,

We have reviewed your reported issue and need to inform you about the following:

Issue Details:
- Problem: %s
- Location: %s
- Status: %s
- Updated on: %s

Please contact us if you have any questions or need clarification.

Best regards,
City Care Team
`, owner.Name, issue.Problem, issue.Location, issue.Status, updated)
}

func renderStatusMessage(issue domain.Issue) string {
	if issue.Status == domain.IssueStatusResolved {
		return fmt.Sprintf("Your reported issue '%s' at %s has been resolved. Thank you for helping make our city better!",
			issue.Problem, issue.Location)
	}
	return fmt.Sprintf("Your reported issue '%s' at %s has been marked as a report. Please contact us for more information.",
		issue.Problem, issue.Location)
}

func renderPasswordReset(user *domain.User, password string) string {
	return fmt.Sprintf(`Dear %s,

Your password has been reset successfully.

Your new password: %s

Please login and change your password immediately for security reasons.

Best regards,
City Care Team
`, user.Name, password)
}
