package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackedgit/stackgit/cmd/ui"
	"github.com/stackedgit/stackgit/pkg/refs"
	"github.com/stackedgit/stackgit/pkg/repository"
)

func newRefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "Inspect and edit the ref table",
		Long: `Read and write refs through compare-and-swap transactions. Every write
checks that the ref still holds the value it held when it was last read,
so racing writers fail loudly instead of clobbering each other.`,
	}

	cmd.AddCommand(newRefsListCmd())
	cmd.AddCommand(newRefsSetCmd())
	cmd.AddCommand(newRefsDeleteCmd())
	cmd.AddCommand(newRefsRenameCmd())

	return cmd
}

func newRefsListCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "list [prefix]",
		Short: "List refs, optionally narrowed to a name prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			listed := repo.Refs().List(cmd.Context(), prefix)

			if plain {
				for _, ref := range listed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ref.Hash, ref.Name)
				}
				return nil
			}

			rows := make([]ui.RefRow, 0, len(listed))
			for _, ref := range listed {
				subject := ""
				if data, dataErr := repo.Commit(ref.Hash).Data(); dataErr == nil {
					subject = data.Subject()
				}
				rows = append(rows, ui.RefRow{
					Name:    ref.Name,
					Hash:    ref.Hash.Short(),
					Subject: subject,
				})
			}
			ui.RefTable(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print '<hash> <name>' lines for scripting")

	return cmd
}

func newRefsSetCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "set <ref> <revision>",
		Short: "Point a ref at a commit, creating it if absent",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			commit, err := resolveCommit(cmd.Context(), repo, args[1])
			if err != nil {
				return err
			}
			if err := repo.Refs().Set(cmd.Context(), args[0], commit, message); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				ui.SuccessMessage("Updated", args[0], "to", commit.Hash().Short()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "stackgit: set ref", "Reflog message for the update")

	return cmd
}

func newRefsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete a ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Refs().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMessage("Deleted", args[0]))
			return nil
		},
	}

	return cmd
}

func newRefsRenameCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "rename <old-ref> <new-ref>",
		Short: "Rename a ref in one atomic transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			pair := refs.RenamePair{Old: args[0], New: args[1]}
			if err := repo.Refs().Rename(cmd.Context(), message, pair); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				ui.SuccessMessage("Renamed", args[0], "to", args[1]))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "stackgit: rename ref", "Reflog message for the rename")

	return cmd
}
