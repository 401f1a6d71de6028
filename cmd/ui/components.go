package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

// FormatChange formats one file record of a tree diff. The status is a
// diff status field such as "M", "A", "D" or "R075"; rename and copy
// records render both paths, everything else renders the path that still
// exists after the change.
func FormatChange(status, oldPath, newPath string) string {
	letter := "?"
	if status != "" {
		letter = status[:1]
	}

	switch letter {
	case "A":
		return fmt.Sprintf("  %s  %s", AddedStyle.Render(letter), AddedStyle.Render(newPath))
	case "D":
		return fmt.Sprintf("  %s  %s", DeletedStyle.Render(letter), DeletedStyle.Render(oldPath))
	case "R", "C":
		moved := fmt.Sprintf("%s %s %s", oldPath, IconArrow, newPath)
		return fmt.Sprintf("  %s  %s", RenamedStyle.Render(status), RenamedStyle.Render(moved))
	case "U":
		return fmt.Sprintf("  %s  %s", UnmergedStyle.Render(letter), UnmergedStyle.Render(newPath))
	case "M", "T":
		return fmt.Sprintf("  %s  %s", ModifiedStyle.Render(letter), ModifiedStyle.Render(newPath))
	default:
		return fmt.Sprintf("  %s  %s", letter, newPath)
	}
}

// SuccessMessage creates a success message with a checkmark icon
func SuccessMessage(message string, details ...string) string {
	var parts []string
	parts = append(parts, Green(IconCheck), Green(message))

	for _, detail := range details {
		parts = append(parts, Blue(detail))
	}

	return strings.Join(parts, " ")
}

// BranchInfo formats branch information with an icon
func BranchInfo(branchName string) string {
	return fmt.Sprintf("%s Branch: %s", Cyan(IconBranch), Blue(branchName))
}

// CommitInfo represents information about a commit
type CommitInfo struct {
	Hash    string
	Author  string
	Date    string
	Message string
}

// FormatCommitDetailed formats a commit with full details in a box
func FormatCommitDetailed(commit CommitInfo) string {
	var content strings.Builder

	content.WriteString(fmt.Sprintf("%s %s\n", Yellow(IconCommit), Hash(commit.Hash)))
	content.WriteString(fmt.Sprintf("%s %s\n", Cyan(IconAuthor), Cyan(commit.Author)))
	content.WriteString(fmt.Sprintf("%s %s\n", Magenta(IconDate), Magenta(commit.Date)))

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		MarginTop(1)
	content.WriteString(messageStyle.Render(commit.Message))

	return CommitBox(content.String())
}

// FormatCommitSeparator creates a separator between commits
func FormatCommitSeparator() string {
	separatorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	return separatorStyle.Render("  " + IconSeparator)
}

// CommitRow is one line of the compact commit table.
type CommitRow struct {
	Hash    string
	Author  string
	Date    string
	Subject string
}

// CommitTable renders commits in a compact table format.
func CommitTable(w io.Writer, rows []CommitRow) {
	table := tablewriter.NewWriter(w)
	table.Header("Commit", "Author", "Date", "Subject")

	for _, row := range rows {
		table.Append(
			Yellow(row.Hash),
			Cyan(row.Author),
			Magenta(row.Date),
			row.Subject,
		)
	}

	table.Render()
}

// RefRow is one line of the ref table.
type RefRow struct {
	Name    string
	Hash    string
	Subject string
}

// RefTable renders the ref table.
func RefTable(w io.Writer, rows []RefRow) {
	table := tablewriter.NewWriter(w)
	table.Header("Ref", "Commit", "Subject")

	for _, row := range rows {
		table.Append(
			Ref(row.Name),
			Yellow(row.Hash),
			row.Subject,
		)
	}

	table.Render()
}

// ErrorMessage formats an error message in red
func ErrorMessage(message string) string {
	return Red(message)
}

// WarningMessage formats a warning message in yellow
func WarningMessage(message string) string {
	return Yellow(message)
}

// InfoMessage formats an info message in blue
func InfoMessage(message string) string {
	return Blue(message)
}
