package cli

import (
	"testing"

	"ownergate/internal/config"
	"ownergate/internal/flags"

	"github.com/spf13/cobra"
)

func TestApplyImplicitDefaults_InActions_DefaultsAnnotationsOn(t *testing.T) {
	cfg := config.New()
	cfg.InActions = true

	cmd := &cobra.Command{Use: "check"}
	cmd.Flags().Bool(flags.FlagAnnotations, false, "")

	applyImplicitDefaults(cmd, cfg)

	if !cfg.Output.Annotations {
		t.Fatal("expected annotations to default on inside GitHub Actions")
	}
}

func TestApplyImplicitDefaults_DoesNotOverrideExplicitAnnotationsFlag(t *testing.T) {
	cfg := config.New()
	cfg.InActions = true

	cmd := &cobra.Command{Use: "check"}
	cmd.Flags().Bool(flags.FlagAnnotations, false, "")
	if err := cmd.Flags().Set(flags.FlagAnnotations, "false"); err != nil {
		t.Fatalf("failed to set annotations flag: %v", err)
	}

	applyImplicitDefaults(cmd, cfg)

	if cfg.Output.Annotations {
		t.Fatal("expected annotations to remain off when --annotations explicitly set")
	}
}

func TestApplyImplicitDefaults_OutsideActions_LeavesAnnotationsOff(t *testing.T) {
	cfg := config.New()

	cmd := &cobra.Command{Use: "check"}
	cmd.Flags().Bool(flags.FlagAnnotations, false, "")

	applyImplicitDefaults(cmd, cfg)

	if cfg.Output.Annotations {
		t.Fatal("expected annotations to stay off outside GitHub Actions")
	}
}
