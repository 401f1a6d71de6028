package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackedgit/stackgit/cmd/ui"
	"github.com/stackedgit/stackgit/pkg/common/fileops"
	"github.com/stackedgit/stackgit/pkg/config"
	"github.com/stackedgit/stackgit/pkg/repository"
)

func newDiffCmd() *cobra.Command {
	var (
		stat      bool
		files     bool
		fullIndex bool
		output    string
		diffOpts  []string
	)

	cmd := &cobra.Command{
		Use:   "diff <revision> <revision> [path...]",
		Short: "Show changes between two trees",
		Long: `Diff the trees two revisions peel to. By default the textual patch is
written to stdout; --stat renders a diffstat, --files lists the changed
paths with their status letters. Paths after the revisions limit the diff.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if files && len(args) > 2 {
				return fmt.Errorf("--files does not take path limits")
			}

			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := cmd.Context()
			oldTree, err := resolveTree(ctx, repo, args[0])
			if err != nil {
				return err
			}
			newTree, err := resolveTree(ctx, repo, args[1])
			if err != nil {
				return err
			}

			if files {
				for change, changeErr := range repo.DiffTreeFiles(oldTree, newTree) {
					if changeErr != nil {
						return changeErr
					}
					fmt.Fprintln(cmd.OutOrStdout(),
						ui.FormatChange(change.Status, change.OldPath, change.NewPath))
				}
				return nil
			}

			extra := diffOpts
			if len(extra) == 0 {
				cfg := config.New(repo.Runner())
				if err := cfg.Load(ctx); err != nil {
					return err
				}
				extra = cfg.GetList("stackgit.diffopts")
			}

			opts := []repository.DiffOption{repository.WithPathLimits(args[2:]...)}
			if stat {
				opts = append(opts, repository.WithStat())
			}
			if fullIndex {
				opts = append(opts, repository.WithFullIndex())
			}
			if len(extra) > 0 {
				opts = append(opts, repository.WithDiffArgs(extra...))
			}

			patch, err := repo.DiffTree(oldTree, newTree, opts...)
			if err != nil {
				return err
			}

			if output != "" {
				return fileops.AtomicWrite(output, patch, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(patch)
			return err
		},
	}

	cmd.Flags().BoolVar(&stat, "stat", false, "Show a diffstat instead of the patch")
	cmd.Flags().BoolVar(&files, "files", false, "List changed files with their status letters")
	cmd.Flags().BoolVar(&fullIndex, "full-index", false, "Show full pre- and post-image blob hashes")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the patch to a file instead of stdout")
	cmd.Flags().StringArrayVarP(&diffOpts, "diff-opt", "O", nil, "Extra option passed through to git diff-tree (repeatable; defaults to stackgit.diffopts)")
	cmd.MarkFlagsMutuallyExclusive("stat", "files")

	return cmd
}
