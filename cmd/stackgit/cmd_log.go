package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/stackedgit/stackgit/cmd/ui"
	"github.com/stackedgit/stackgit/pkg/history"
	"github.com/stackedgit/stackgit/pkg/objects"
	"github.com/stackedgit/stackgit/pkg/repository"
)

func newLogCmd() *cobra.Command {
	var limit int
	var useTable bool

	cmd := &cobra.Command{
		Use:   "log [revision]",
		Short: "Show commit history",
		Long: `Show the ancestry of a revision, newest first, walking both sides of
every merge. The revision defaults to HEAD.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			start, err := resolveCommit(cmd.Context(), repo, revOrHead(args))
			if err != nil {
				return err
			}

			walker := history.NewWalker(repo)
			commits, err := walker.Walk(cmd.Context(), start, limit)
			if err != nil {
				return err
			}

			if useTable {
				return displayCommitsAsTable(cmd.OutOrStdout(), commits)
			}
			return displayCommitsDetailed(cmd.OutOrStdout(), commits)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Limit the number of commits to show")
	cmd.Flags().BoolVarP(&useTable, "table", "t", false, "Display commits in table format")

	return cmd
}

// displayCommitsDetailed shows commits in boxed detail, one box per commit.
func displayCommitsDetailed(w io.Writer, commits []*objects.Commit) error {
	fmt.Fprintln(w, ui.Header(" Commit History "))
	fmt.Fprintln(w)

	for i, commit := range commits {
		data, err := commit.Data()
		if err != nil {
			return err
		}

		fmt.Fprintln(w, ui.FormatCommitDetailed(ui.CommitInfo{
			Hash:    commit.Hash().String(),
			Author:  data.Author.NameEmail(),
			Date:    data.Author.When.Time().Format(time.RFC1123),
			Message: data.Message,
		}))

		if i < len(commits)-1 {
			fmt.Fprintln(w, ui.FormatCommitSeparator())
		}
	}

	return nil
}

// displayCommitsAsTable shows commits in a compact table format.
func displayCommitsAsTable(w io.Writer, commits []*objects.Commit) error {
	fmt.Fprintln(w, ui.Header(" Commit History "))
	fmt.Fprintln(w)

	rows := make([]ui.CommitRow, 0, len(commits))
	for _, commit := range commits {
		data, err := commit.Data()
		if err != nil {
			return err
		}

		subject := data.Subject()
		if len(subject) > 50 {
			subject = subject[:47] + "..."
		}

		rows = append(rows, ui.CommitRow{
			Hash:    commit.Hash().Short(),
			Author:  data.Author.Name,
			Date:    data.Author.When.Time().Format("2006-01-02 15:04"),
			Subject: subject,
		})
	}

	ui.CommitTable(w, rows)
	return nil
}
