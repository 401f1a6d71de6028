package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackedgit/stackgit/pkg/gitcmd"
	"github.com/stackedgit/stackgit/pkg/objects"
	"github.com/stackedgit/stackgit/pkg/repository"
)

func newIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id [revision]",
		Short: "Print the full commit hash of a revision",
		Long: `Resolve a revision to the commit it names and print the full hash.
The revision defaults to HEAD and accepts anything git rev-parse accepts:
branch names, tags, reflog entries, ancestry suffixes like HEAD~3.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			commit, err := resolveCommit(cmd.Context(), repo, revOrHead(args))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), commit.Hash())
			return nil
		},
	}

	return cmd
}

func newCatCmd() *cobra.Command {
	var kindOnly bool

	cmd := &cobra.Command{
		Use:   "cat <revision>",
		Short: "Write the raw content of an object to stdout",
		Long: `Resolve a revision to any object and write its uncompressed payload to
stdout. Blobs print their file content, trees their binary entry records,
commits their header and message.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			line, err := repo.Runner().OutputLine(cmd.Context(),
				[]string{"rev-parse", "--verify", args[0] + "^{object}"},
				gitcmd.DiscardStderr())
			if err != nil {
				return fmt.Errorf("unknown revision %q", args[0])
			}
			hash, err := objects.ParseObjectHash(line)
			if err != nil {
				return err
			}

			kind, data, err := repo.CatObject(hash)
			if err != nil {
				return err
			}

			if kindOnly {
				fmt.Fprintln(cmd.OutOrStdout(), kind)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVarP(&kindOnly, "kind", "t", false, "Print the object's kind instead of its content")

	return cmd
}
