// cmd/run/summary.go

package run

import (
	"strconv"

	"github.com/CodeMonkeyCybersecurity/framerelay/pkg/hostloop"
)

// Summary is what `framerelay run` prints.
type Summary struct {
	RunID        string         `json:"run_id" yaml:"run_id"`
	Loop         hostloop.Stats `json:"loop" yaml:"loop"`
	Updates      int            `json:"update_calls" yaml:"update_calls"`
	LateUpdates  int            `json:"late_update_calls" yaml:"late_update_calls"`
	FixedUpdates int            `json:"fixed_update_calls" yaml:"fixed_update_calls"`
	Resets       int            `json:"resets" yaml:"resets"`
	InertRelays  int            `json:"inert_relays" yaml:"inert_relays"`
	ActiveRelay  string         `json:"active_relay,omitempty" yaml:"active_relay,omitempty"`
	Elapsed      string         `json:"elapsed" yaml:"elapsed"`
	Error        string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Rows implements output.Texter.
func (s Summary) Rows() map[string]string {
	rows := map[string]string{
		"run_id":             s.RunID,
		"frames":             strconv.Itoa(s.Loop.Frames),
		"fixed_steps":        strconv.Itoa(s.Loop.FixedUpdates),
		"dropped_steps":      strconv.Itoa(s.Loop.DroppedSteps),
		"update_calls":       strconv.Itoa(s.Updates),
		"late_update_calls":  strconv.Itoa(s.LateUpdates),
		"fixed_update_calls": strconv.Itoa(s.FixedUpdates),
		"resets":             strconv.Itoa(s.Resets),
		"inert_relays":       strconv.Itoa(s.InertRelays),
		"active_relay":       s.ActiveRelay,
		"elapsed":            s.Elapsed,
	}
	if s.Error != "" {
		rows["error"] = s.Error
	}
	return rows
}
