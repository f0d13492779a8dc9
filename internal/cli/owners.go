package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"ownergate/internal/engine"
	"ownergate/internal/flags"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var ownersUnownedOnly bool

var ownersCmd = &cobra.Command{
	Use:   "owners",
	Short: "List code owners for every changed file of a pull request",
	Long: `List the CODEOWNERS rule, owner tokens and expanded identities for every
changed file of a pull request.

This is the read-only companion to "ownergate check": it shows whose
approval each file would need without consulting reviews. Use
--unowned-only to audit CODEOWNERS coverage.

Examples:
  # Full ownership listing
  ownergate owners --repo acme/widgets --pr 42

  # Only files no rule assigns an owner to
  ownergate owners --repo acme/widgets --pr 42 --unowned-only

  # Machine-readable
  ownergate owners --repo acme/widgets --pr 42 --format json
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.ApplyActionsEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		ctx := context.Background()
		client, err := newGitHubClient(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		eng := engine.New(client, cfg)
		listing, err := eng.Owners(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		if ownersUnownedOnly {
			kept := make([]engine.FileOwnership, 0, len(listing.Files))
			for _, f := range listing.Files {
				if !f.Owned {
					kept = append(kept, f)
				}
			}
			listing.Files = kept
		}

		if cfg.Output.Format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(listing); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(3)
			}
			return
		}

		for _, f := range listing.Files {
			printOwnership(cmd.OutOrStdout(), f)
		}
		if len(listing.Problems) > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "CODEOWNERS problems:")
			for _, p := range listing.Problems {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
		}
	},
}

func printOwnership(w io.Writer, f engine.FileOwnership) {
	bold := color.New(color.Bold)
	bold.Fprintln(w, f.Path)
	if !f.Owned {
		if f.Pattern != "" {
			fmt.Fprintf(w, "  unowned (rule %q at line %d has no owners)\n", f.Pattern, f.Line)
		} else {
			fmt.Fprintln(w, "  unowned (no matching rule)")
		}
		return
	}
	fmt.Fprintf(w, "  rule:   %s (line %d)\n", f.Pattern, f.Line)
	fmt.Fprintf(w, "  owners: %s\n", strings.Join(f.Owners, ", "))
	if len(f.Identities) > 0 {
		fmt.Fprintf(w, "  needs:  %s\n", strings.Join(f.Identities, ", "))
	}
	if len(f.EmptyTeams) > 0 {
		fmt.Fprintf(w, "  empty teams: %s\n", strings.Join(f.EmptyTeams, ", "))
	}
	if len(f.Unverifiable) > 0 {
		fmt.Fprintf(w, "  unverifiable teams: %s\n", strings.Join(f.Unverifiable, ", "))
	}
}

func init() {
	rootCmd.AddCommand(ownersCmd)

	addTargetFlags(ownersCmd)
	addAuthFlags(ownersCmd)
	addPolicyFlags(ownersCmd)
	addRuntimeFlags(ownersCmd)

	ownersCmd.Flags().StringVar(&cfg.Output.Format, flags.FlagFormat, cfg.Output.Format, "Output format: text|json")
	ownersCmd.Flags().BoolVar(&ownersUnownedOnly, flags.FlagUnownedOnly, false, "Only list files without owners")
}
