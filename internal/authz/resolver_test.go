package authz

import (
	"context"
	"errors"
	"testing"
)

func resolveWith(t *testing.T, repo *memOverrideRepo, userID int64, role string) map[string]struct{} {
	t.Helper()
	resolver := NewResolver(DefaultPresets(), repo)
	set, err := resolver.Resolve(context.Background(), userID, role)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return set
}

func TestResolveDenyAlwaysWins(t *testing.T) {
	repo := newMemOverrideRepo()
	// requests.view is in the employee preset AND explicitly granted;
	// the deny must still remove it.
	_ = repo.Upsert(context.Background(), Override{UserID: 42, Code: "requests.view"})
	_ = repo.Upsert(context.Background(), Override{UserID: 42, Code: "requests.view", IsDenied: true})

	set := resolveWith(t, repo, 42, "employee")
	if _, ok := set["requests.view"]; ok {
		t.Fatalf("deny override must remove the code from the effective set")
	}
}

func TestResolveDenyRemovesPresetGrant(t *testing.T) {
	repo := newMemOverrideRepo()
	_ = repo.Upsert(context.Background(), Override{UserID: 8, Code: "dashboard.view", IsDenied: true})

	set := resolveWith(t, repo, 8, "employee")
	if _, ok := set["dashboard.view"]; ok {
		t.Fatalf("deny must override the role preset")
	}
	if _, ok := set["customers.view"]; !ok {
		t.Fatalf("unrelated preset codes must survive")
	}
}

func TestResolveGrantAugmentsPreset(t *testing.T) {
	repo := newMemOverrideRepo()
	_ = repo.Upsert(context.Background(), Override{UserID: 7, Code: "requests.approve"})

	set := resolveWith(t, repo, 7, "employee")
	if _, ok := set["requests.approve"]; !ok {
		t.Fatalf("explicit grant must augment the preset")
	}
}

func TestResolveUnknownRoleUsesOverridesOnly(t *testing.T) {
	repo := newMemOverrideRepo()
	_ = repo.Upsert(context.Background(), Override{UserID: 1, Code: "reports.view"})

	set := resolveWith(t, repo, 1, "intern")
	if len(set) != 1 {
		t.Fatalf("expected only the granted code, got %v", set)
	}
	if _, ok := set["reports.view"]; !ok {
		t.Fatalf("ad hoc grants must work without a known role")
	}
}

func TestResolveKeepsUncatalogedAndMalformedCodes(t *testing.T) {
	repo := newMemOverrideRepo()
	_ = repo.Upsert(context.Background(), Override{UserID: 3, Code: "legacy_export"})
	_ = repo.Upsert(context.Background(), Override{UserID: 3, Code: "n8n.trigger_sync"})

	set := resolveWith(t, repo, 3, "")
	if _, ok := set["legacy_export"]; !ok {
		t.Fatalf("malformed codes are still valid set members")
	}
	if _, ok := set["n8n.trigger_sync"]; !ok {
		t.Fatalf("uncataloged codes are still valid set members")
	}
}

func TestResolvePropagatesStoreError(t *testing.T) {
	repo := newMemOverrideRepo()
	repo.listError = errors.New("timeout")
	resolver := NewResolver(DefaultPresets(), repo)
	if _, err := resolver.Resolve(context.Background(), 4, "admin"); !errors.Is(err, repo.listError) {
		t.Fatalf("expected store error, got %v", err)
	}
}
