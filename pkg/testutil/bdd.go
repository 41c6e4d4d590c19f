package testutil

import "testing"

// Given, When and Then run one named step of a scenario. Steps usually share
// state through closures, so once a step has failed the later ones are
// reported as skipped instead of failing on missing state.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then "+desc, fn)
}

func step(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()
	if t.Failed() {
		t.Run(name, func(t *testing.T) { t.Skip("an earlier step failed") })
		return
	}
	t.Run(name, fn)
}
