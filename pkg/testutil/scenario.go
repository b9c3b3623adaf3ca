package testutil

import "testing"

// Step is one action in a Scenario.
type Step struct {
	Name   string
	Action func(h *Harness) error
}

// Scenario is a named sequence of steps run against a fresh Harness.
type Scenario struct {
	Name  string
	Setup func(h *Harness)
	Steps []Step
	// Verify runs after every step succeeded.
	Verify func(t *testing.T, h *Harness)
}

// RunScenarios runs each scenario as a parallel subtest.
func RunScenarios(t *testing.T, scenarios ...Scenario) {
	t.Helper()
	for _, sc := range scenarios {
		sc := sc
		t.Run(sc.Name, func(t *testing.T) {
			t.Parallel()
			h := NewHarness(t)
			if sc.Setup != nil {
				sc.Setup(h)
			}
			for i, step := range sc.Steps {
				if err := step.Action(h); err != nil {
					t.Fatalf("step %d (%s): %v", i, step.Name, err)
				}
			}
			if sc.Verify != nil {
				sc.Verify(t, h)
			}
		})
	}
}
