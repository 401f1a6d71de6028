package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stackedgit/stackgit/cmd/ui"
	"github.com/stackedgit/stackgit/pkg/config"
	"github.com/stackedgit/stackgit/pkg/repository"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write git configuration",
		Long: `Read configuration the way git resolves it, with local values shadowing
global ones and global shadowing system. Writes go through the git binary
so includes and conditional sections keep working.`,
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			cfg := config.New(repo.Runner())
			if err := cfg.Load(cmd.Context()); err != nil {
				return err
			}

			if all {
				values := cfg.GetAll(args[0])
				if len(values) == 0 {
					return config.NewNotFoundError(args[0])
				}
				for _, value := range values {
					fmt.Fprintln(cmd.OutOrStdout(), value)
				}
				return nil
			}

			entry := cfg.Get(args[0])
			if entry == nil {
				return config.NewNotFoundError(args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.Value)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Print every value of a multi-valued key, in git reading order")

	return cmd
}

func newConfigSetCmd() *cobra.Command {
	var scopeName string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := config.ParseScope(scopeName)
			if err != nil {
				return err
			}

			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			cfg := config.New(repo.Runner())
			if err := cfg.Load(cmd.Context()); err != nil {
				return err
			}
			if err := cfg.Set(cmd.Context(), args[0], args[1], scope); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMessage("Set", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeName, "scope", "local", "Configuration scope to write to (local, global, system)")

	return cmd
}

func newConfigUnsetCmd() *cobra.Command {
	var scopeName string

	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a configuration key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := config.ParseScope(scopeName)
			if err != nil {
				return err
			}

			repo, err := repository.Discover(cmd.Context())
			if err != nil {
				return err
			}
			defer repo.Close()

			cfg := config.New(repo.Runner())
			if err := cfg.Load(cmd.Context()); err != nil {
				return err
			}
			if err := cfg.Unset(cmd.Context(), args[0], scope); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMessage("Unset", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeName, "scope", "local", "Configuration scope to remove from (local, global, system)")

	return cmd
}
