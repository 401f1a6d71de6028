package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackedgit/stackgit/cmd/ui"
	"github.com/stackedgit/stackgit/pkg/repository"
)

func newMergeBaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge-base <revision> <revision>",
		Short: "Print the best common ancestors of two commits",
		Long: `Print every best common ancestor of the two commits, one hash per line.
Criss-cross histories can have more than one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := cmd.Context()
			first, err := resolveCommit(ctx, repo, args[0])
			if err != nil {
				return err
			}
			second, err := resolveCommit(ctx, repo, args[1])
			if err != nil {
				return err
			}

			bases, err := repo.MergeBases(ctx, first, second)
			if err != nil {
				return err
			}
			for _, base := range bases {
				fmt.Fprintln(cmd.OutOrStdout(), base.Hash())
			}
			return nil
		},
	}

	return cmd
}

func newSubmodulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submodules [revision]",
		Short: "List the submodule paths recorded in a tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			tree, err := resolveTree(cmd.Context(), repo, revOrHead(args))
			if err != nil {
				return err
			}
			paths, err := repo.Submodules(cmd.Context(), tree)
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	return cmd
}

func newRepackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repack",
		Short: "Repack the object store into a single pack",
		Long: `Run a full repack of the object store. Loose objects and existing packs
are rewritten into one pack and the leftovers pruned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Repack(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMessage("Repacked object store"))
			return nil
		},
	}

	return cmd
}
