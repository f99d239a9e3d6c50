package repo

import "testing"

// MockRepo returns an in-memory repo with default config for tests.
func MockRepo(t testing.TB) *Repo {
	t.Helper()
	return Default(t.TempDir())
}
