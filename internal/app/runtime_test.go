package app

import "testing"

func TestRefreshTestModePicksUpEnvChanges(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	if !InTestMode() {
		t.Fatalf("expected test mode after setting %s=1", testModeEnv)
	}

	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	if InTestMode() {
		t.Fatalf("expected test mode cleared after unsetting %s", testModeEnv)
	}
}
