package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nanofi/nanofi/internal/buildinfo"
)

// NewRootCommand builds the nanofi command tree around a. Global settings
// flags (-s, -w, -l, -f, -c) are handled by the config loader and must be
// stripped from the arguments before Execute.
func NewRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "nanofi",
		Short: "NanoFi IP-NFT dashboard in the terminal",
		Long: `NanoFi lets demo users browse IP-NFT vaults and lending pools, submit
patents for vault tokenization and, as SPV reviewers, approve or reject them.

Global settings (before or after the command):
  -s <path>   local storage profile (default nanofi.db, ":memory:" for none)
  -w <ms>     simulated login delay
  -l <level>  log level
  -f <format> log format: slog-json, slog-text, zap
  -c <file>   JSON or YAML config file`,
		SilenceUsage: true,
	}
	root.SetOut(a.out)

	root.AddCommand(
		loginCmd(a),
		&cobra.Command{
			Use:   "logout",
			Short: "End the current session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.Logout(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the logged-in user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.WhoAmI(cmd.Context())
			},
		},
		applyCmd(a),
		reviewCmd(a),
		&cobra.Command{
			Use:   "seed",
			Short: "Load demo vault applications into an empty profile",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.Seed(cmd.Context())
			},
		},
		catalogCmd(a),
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.Shell(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				buildinfo.PrintBuildData(cmd.OutOrStdout())
			},
		},
	)
	return root
}

func loginCmd(a *App) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a demo account",
		Long: `Sign in with one of the demo accounts. The password is always read
from the terminal.

  investor@nanofi.io / investor123   user
  demo@nanofi.io     / demo123       user
  spv@nanofi.io      / spv123        SPV reviewer
  reviewer@nanofi.io / reviewer123   SPV reviewer`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.Login(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	return cmd
}

func applyCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Submit and inspect vault applications",
	}

	var file string
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Submit a patent for vault tokenization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.Submit(cmd.Context(), file)
		},
	}
	submit.Flags().StringVar(&file, "file", "", "read the form from a JSON or YAML file instead of prompting")

	var (
		pending bool
		status  string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List vault applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pending {
				status = "pending"
			}
			return a.List(cmd.Context(), status)
		},
	}
	list.Flags().BoolVar(&pending, "pending", false, "only pending applications")
	list.Flags().StringVar(&status, "status", "", "only applications with this status")
	list.MarkFlagsMutuallyExclusive("pending", "status")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Show(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(submit, list, show)
	return cmd
}

func reviewCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Approve or reject pending applications (SPV only)",
	}
	cmd.AddCommand(
		decisionCmd("approve", "Approve an application", a.Approve),
		decisionCmd("reject", "Reject an application", a.Reject),
	)
	return cmd
}

// decisionCmd takes the notes from --notes or, failing that, from the words
// after the id.
func decisionCmd(use, short string, decide func(ctx context.Context, id, notes string) error) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   use + " <id> [notes...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := notes
			if n == "" {
				n = joinNotes(args[1:])
			}
			return decide(cmd.Context(), args[0], n)
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "review notes")
	return cmd
}

func catalogCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:       "catalog [" + strings.Join(CatalogSections, "|") + "]",
		Short:     "Browse IP-NFTs, vaults, lending pools and governance proposals",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: CatalogSections,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Catalog(cmd.Context(), args[0])
		},
	}
}
