package engine

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestOwnersListing(t *testing.T) {
	cfg, _ := testConfig(t)
	eng := &Engine{
		Source: &fakeSource{
			ownersText: "# owners\n" +
				"* @alice\n" +
				"src/ @acme/infra dev@example.com\n" +
				"vendor/\n",
			files: changed("main.go", "src/app.go", "vendor/dep.go", "src/parser/lex.go"),
		},
		Teams: &fakeTeams{members: map[string][]string{"acme/infra": {"carol", "dave"}}},
	}

	listing, err := eng.Owners(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Owners error: %v", err)
	}

	if listing.Repo != "acme/widgets" || listing.PR != 42 {
		t.Fatalf("unexpected target: %s#%d", listing.Repo, listing.PR)
	}
	if len(listing.Files) != 4 {
		t.Fatalf("expected 4 files, got %+v", listing.Files)
	}

	root := listing.Files[0]
	if !root.Owned || root.Pattern != "*" || root.Line != 2 {
		t.Fatalf("unexpected root ownership: %+v", root)
	}
	if !slices.Equal(root.Owners, []string{"@alice"}) {
		t.Fatalf("root owners: %v", root.Owners)
	}

	src := listing.Files[1]
	if !slices.Equal(src.Owners, []string{"@acme/infra", "dev@example.com"}) {
		t.Fatalf("src owners: %v", src.Owners)
	}
	if !slices.Equal(src.Identities, []string{"carol", "dave", "dev@example.com"}) {
		t.Fatalf("src identities: %v", src.Identities)
	}

	vendored := listing.Files[2]
	if vendored.Owned {
		t.Fatalf("vendor file should be unowned: %+v", vendored)
	}
	if vendored.Pattern != "vendor/" {
		t.Fatalf("ownerless rule should still be reported: %+v", vendored)
	}

	deep := listing.Files[3]
	if deep.Pattern != "src/" {
		t.Fatalf("expected src/ to govern nested file, got %+v", deep)
	}
}

func TestOwnersListingUnverifiableTeam(t *testing.T) {
	cfg, _ := testConfig(t)
	eng := &Engine{
		Source: &fakeSource{
			ownersText: "* @acme/sre\n",
			files:      changed("main.go"),
		},
		Teams: &fakeTeams{errs: map[string]error{"acme/sre": errors.New("boom")}},
	}

	listing, err := eng.Owners(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Owners error: %v", err)
	}
	f := listing.Files[0]
	if !slices.Equal(f.Unverifiable, []string{"@acme/sre"}) {
		t.Fatalf("unverifiable teams: %v", f.Unverifiable)
	}
	if len(f.Identities) != 0 {
		t.Fatalf("no identities expected, got %v", f.Identities)
	}
}

func TestOwnersListingFetchFailure(t *testing.T) {
	cfg, _ := testConfig(t)
	eng := &Engine{
		Source: &fakeSource{filesErr: errors.New("api down")},
		Teams:  &fakeTeams{},
	}

	if _, err := eng.Owners(context.Background(), cfg); err == nil {
		t.Fatalf("expected error when the file list cannot be fetched")
	}
}
