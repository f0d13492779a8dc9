package config

import "testing"

func TestApplyActionsEnv_FillsTarget(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	t.Setenv("GITHUB_REF", "refs/pull/42/merge")

	cfg := New()
	if err := cfg.ApplyActionsEnv(); err != nil {
		t.Fatalf("ApplyActionsEnv: %v", err)
	}
	if !cfg.InActions {
		t.Error("InActions should be set")
	}
	if cfg.Target.Repo != "acme/widgets" {
		t.Errorf("Repo = %q", cfg.Target.Repo)
	}
	if cfg.Target.PR != 42 {
		t.Errorf("PR = %d, want 42", cfg.Target.PR)
	}
}

func TestApplyActionsEnv_FlagsWin(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")
	t.Setenv("GITHUB_REF", "refs/pull/42/merge")

	cfg := New()
	cfg.Target.Repo = "other/repo"
	cfg.Target.PR = 7
	if err := cfg.ApplyActionsEnv(); err != nil {
		t.Fatalf("ApplyActionsEnv: %v", err)
	}
	if cfg.Target.Repo != "other/repo" || cfg.Target.PR != 7 {
		t.Errorf("explicit target overwritten: %s #%d", cfg.Target.Repo, cfg.Target.PR)
	}
}

func TestApplyActionsEnv_OutsideActions(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITHUB_REPOSITORY", "acme/widgets")

	cfg := New()
	if err := cfg.ApplyActionsEnv(); err != nil {
		t.Fatalf("ApplyActionsEnv: %v", err)
	}
	if cfg.InActions {
		t.Error("InActions should be false outside Actions")
	}
	if cfg.Target.Repo != "" {
		t.Errorf("Repo should stay empty, got %q", cfg.Target.Repo)
	}
}

func TestPRNumberFromRef(t *testing.T) {
	tests := []struct {
		ref    string
		want   int
		wantOK bool
	}{
		{"refs/pull/42/merge", 42, true},
		{"refs/pull/1/head", 1, true},
		{"refs/heads/main", 0, false},
		{"refs/tags/v1.0.0", 0, false},
		{"refs/pull/zero/merge", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		got, ok := prNumberFromRef(tc.ref)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("prNumberFromRef(%q) = %d,%v want %d,%v", tc.ref, got, ok, tc.want, tc.wantOK)
		}
	}
}
