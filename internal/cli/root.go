package cli

import (
	"fmt"
	"os"

	"ownergate/internal/flags"
	"ownergate/internal/log"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ownergate",
	Short: "Gate pull requests on strict code owner approval",
	Long: `ownergate checks that every code owner of every file changed by a pull
request has approved it.

GitHub's own required-reviews setting is satisfied by a single approval per
matching CODEOWNERS rule. ownergate enforces the strict reading instead: one
standing approval from each listed owner, with teams expanded to every member.

ownergate is read-only: it inspects the pull request via the GitHub API and
never mutates state.

Examples:
	# Show available commands and global flags
	ownergate --help

	# Check a pull request
	ownergate check --repo acme/widgets --pr 42

	# List who owns the changed files
	ownergate owners --repo acme/widgets --pr 42

	# Print build info
	ownergate version

Output:
	By default, commands write human-readable output to stdout.
	The check command also supports a JSON verdict document, a Markdown
	report and GitHub Actions annotations (see "ownergate check --help").`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Setup(cfg.Runtime.Verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every GitHub API call and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
