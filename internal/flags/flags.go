package flags

// Package flags defines canonical CLI flag names shared across the
// commands. Keeping these as constants avoids drift between Cobra flag
// wiring and other code paths that reference flags, such as Changed
// lookups when a flag's default depends on the environment.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Target
	FlagRepo = "repo"
	FlagPR   = "pr"

	// Auth
	FlagToken             = "token"
	FlagAppID             = "app-id"
	FlagAppInstallationID = "app-installation-id"
	FlagAppPrivateKey     = "app-private-key"

	// Policy
	FlagIgnore = "ignore"

	// Output
	FlagFormat      = "format"
	FlagReport      = "report"
	FlagOut         = "out"
	FlagAnnotations = "annotations"
	FlagNoConsole   = "no-console"
	FlagShowUnowned = "show-unowned"
	FlagUnownedOnly = "unowned-only"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagVerbose     = "verbose"
)
