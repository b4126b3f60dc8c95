package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bcnelson/chain-addressbook/internal/service"
)

func newBuildCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Merge address files and write the address book",
		Args:  cobra.NoArgs,
		RunE:  a.runBuild,
	}
}

func (a *app) runBuild(cmd *cobra.Command, args []string) error {
	return a.withService(func(svc *service.BuildService) error {
		result, err := svc.Build(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d networks, %d sections, sha256 %s)\n",
			result.OutputPath, result.Networks, result.Sections, result.Digest[:12])
		if result.BuildID != "" {
			state := "changed"
			if result.Unchanged {
				state = "unchanged"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded build #%d %s (%s)\n", result.Number, result.BuildID, state)
		}
		return nil
	})
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fail if the address book on disk is out of date",
		Long: `check merges the address files like build does, but only compares the
result with the existing output file. It exits non-zero when a build would
change the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *service.BuildService) error {
				digest, err := svc.Check(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date (sha256 %s)\n", a.cfg.Paths.OutputPath, digest[:12])
				return nil
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded builds (requires HISTORY_DB_DSN)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withService(func(svc *service.BuildService) error {
				builds, err := svc.ListBuilds(cmd.Context(), limit, 0)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NUMBER\tID\tCREATED\tNETWORKS\tDIGEST")
				for _, b := range builds {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%.12s\n",
						b.Number, b.ID, b.CreatedAt.Format(time.RFC3339), len(b.Networks), b.Digest)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of builds to list")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
