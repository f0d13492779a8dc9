package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"ownergate/internal/config"
	"ownergate/internal/engine"
	"ownergate/internal/flags"
	gh "ownergate/internal/github"

	"github.com/spf13/cobra"
)

var cfg = config.New()

const checkHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	ownergate authenticates to GitHub using an access token or a GitHub App.

	Token sources (in order):
	1) --token flag
	2) GITHUB_TOKEN environment variable
	3) GitHub CLI (gh) authentication via gh auth token (if gh is installed and logged in)

  Token guidance (brief):
  - PAT (classic): typically needs repo (to read private repos) and read:org
    (to expand team owners to their members).
  - Fine-grained PAT: grant access to the target repository with
    Contents: Read and Pull requests: Read, plus Members: Read on the
    organization when CODEOWNERS names teams.
  - GitHub App: grant the same repository and organization permissions and
    pass --app-id, --app-installation-id and --app-private-key.

  Inside GitHub Actions, --repo and --pr default to the pull request that
  triggered the workflow (GITHUB_REPOSITORY and GITHUB_REF), and error
  annotations are emitted automatically.

  Examples:
    # macOS/Linux
    export GITHUB_TOKEN="<your_token>"
    ownergate check --repo acme/widgets --pr 42

		# GitHub CLI auth
		gh auth login
		ownergate check --repo acme/widgets --pr 42

    # Windows PowerShell
    $env:GITHUB_TOKEN = "<your_token>"
    ownergate check --repo acme/widgets --pr 42

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasHelpSubCommands}}Additional help topics:
{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every code owner approved a pull request",
	Long: `Check that every code owner of every changed file approved a pull request.

ownergate resolves the CODEOWNERS rule for each changed file (last matching
rule wins), expands team owners to their full membership, and requires a
standing approval from every resulting identity. One approval per owner set
is not enough; a later "changes requested" or a dismissal withdraws an
earlier approval.

Team expansion fails closed: when a team's membership cannot be read, its
files count as unverified and the check fails with exit code 2.

Authentication:
  ownergate uses a GitHub access token. It prefers --token, then
  GITHUB_TOKEN, and can also reuse GitHub CLI authentication if the gh CLI
  is installed and logged in. GitHub App credentials are supported via the
  --app-* flags.

Output:
	Console output is controlled by --format (default: text).
	Structured outputs can be written via:
	- --out: write the JSON verdict document to a file
	- --report: write a Markdown report to a file
	- --annotations: emit GitHub Actions workflow commands on stdout
	- --no-console: suppress the console sink (use with --out/--annotations)

Exit codes:
	0 = every code owner approved
	1 = approvals missing
	2 = partial verification (team lookups failed, failing closed)
	3 = fatal error (check did not run)

Examples:
  # Token via environment variable
  export GITHUB_TOKEN="<your_token>"
  ownergate check --repo acme/widgets --pr 42

  # Point at a pull request URL instead of --repo/--pr
  ownergate check --repo https://github.com/acme/widgets/pull/42

	# Inside a GitHub Actions pull_request workflow: no flags needed
	ownergate check

	# CI gate with machine-readable verdict
	ownergate check --repo acme/widgets --pr 42 --no-console --out verdict.json
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cfg.ApplyActionsEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		if len(args) == 0 && cmd.Flags().NFlag() == 0 && !cfg.InActions {
			_ = cmd.Help()
			return
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		applyImplicitDefaults(cmd, cfg)

		ctx := context.Background()
		client, err := newGitHubClient(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		eng := engine.New(client, cfg)
		os.Exit(eng.Check(ctx, cfg))
	},
}

func applyImplicitDefaults(cmd *cobra.Command, cfg *config.Config) {
	// Inside GitHub Actions, annotations are the whole point of running
	// the gate, so they default on. An explicit --annotations=false
	// still wins.
	if cfg.InActions && cmd != nil {
		if !cmd.Flags().Changed(flags.FlagAnnotations) {
			cfg.Output.Annotations = true
		}
	}
}

// newGitHubClient builds the API client from App credentials when all
// three are configured, otherwise from a resolved access token.
func newGitHubClient(ctx context.Context) (*gh.Client, error) {
	if cfg.UsesAppAuth() {
		return gh.NewClient("",
			gh.WithAppAuth(cfg.Auth.AppID, cfg.Auth.AppInstallationID, cfg.Auth.AppPrivateKey),
			gh.WithVerbose(cfg.Runtime.Verbose, nil),
		)
	}

	token, source, err := gh.ResolveToken(ctx, cfg.Auth.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve GitHub auth token: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("GitHub auth token is required (set GITHUB_TOKEN or run 'gh auth login')")
	}
	slog.Debug("resolved auth token", "source", source)

	return gh.NewClient(token, gh.WithVerbose(cfg.Runtime.Verbose, nil))
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Target.Repo, flags.FlagRepo, "", "Repository as OWNER/REPO or a github.com URL (a pull request URL also carries the PR number)")
	cmd.Flags().IntVar(&cfg.Target.PR, flags.FlagPR, 0, "Pull request number")
}

func addAuthFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Auth.Token, flags.FlagToken, "", "GitHub access token (default: GITHUB_TOKEN, then gh CLI auth)")
	cmd.Flags().Int64Var(&cfg.Auth.AppID, flags.FlagAppID, 0, "GitHub App ID (requires --app-installation-id and --app-private-key)")
	cmd.Flags().Int64Var(&cfg.Auth.AppInstallationID, flags.FlagAppInstallationID, 0, "GitHub App installation ID")
	cmd.Flags().StringVar(&cfg.Auth.AppPrivateKey, flags.FlagAppPrivateKey, "", "Path to the GitHub App private key PEM file")
}

func addPolicyFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&cfg.Policy.Ignore, flags.FlagIgnore, nil, "Changed-file glob(s) to skip, doublestar syntax (repeatable; comma-separated accepted)")
}

func addRuntimeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent team membership lookups")
	cmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout for the run")
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.SetHelpTemplate(checkHelpTemplate)

	addTargetFlags(checkCmd)
	addAuthFlags(checkCmd)
	addPolicyFlags(checkCmd)
	addRuntimeFlags(checkCmd)

	// Output
	checkCmd.Flags().StringVar(&cfg.Output.Format, flags.FlagFormat, cfg.Output.Format, "Console output format: text|json")
	checkCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	checkCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write the JSON verdict document to this path")
	checkCmd.Flags().BoolVar(&cfg.Output.Annotations, flags.FlagAnnotations, false, "Emit GitHub Actions workflow commands (default: on inside GitHub Actions)")
	checkCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --out/--report/--annotations)")
	checkCmd.Flags().BoolVar(&cfg.Output.ShowUnowned, flags.FlagShowUnowned, false, "List unowned files in text console output")
}
