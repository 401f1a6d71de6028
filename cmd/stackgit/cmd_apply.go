package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/stackedgit/stackgit/cmd/ui"
	"github.com/stackedgit/stackgit/pkg/index"
	"github.com/stackedgit/stackgit/pkg/repository"
)

func newApplyCmd() *cobra.Command {
	var (
		reject bool
		strip  int
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "apply [patch-file]",
		Short: "Apply a patch to the index and work tree",
		Long: `Apply a patch to the index and work tree together. The patch is read
from the named file, or from stdin when no file is given. A patch that
does not apply cleanly is refused without touching anything unless
--reject is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			iw, err := requireWorktree(repo)
			if err != nil {
				return err
			}

			patch, err := readPatch(cmd, args)
			if err != nil {
				return err
			}

			opts := index.ApplyOptions{Quiet: quiet, Reject: reject}
			if cmd.Flags().Changed("strip") {
				opts.Strip = &strip
			}
			if err := iw.Apply(cmd.Context(), patch, opts); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMessage("Applied patch"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reject, "reject", false, "Apply the hunks that fit and leave .rej files for the rest")
	cmd.Flags().IntVarP(&strip, "strip", "p", 1, "Strip this many leading components from patch paths")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress output on success")

	return cmd
}

func readPatch(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
