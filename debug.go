package evergreen

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-tick timing and population metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	inputTime     time.Duration
	updateTime    time.Duration
	submitTime    time.Duration
	groupCount    int
	instanceCount int
}

// debugLog prints timing and state stats to stderr.
func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	total := stats.inputTime + stats.updateTime + stats.submitTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[evergreen] input: %v | update: %v | submit: %v | total: %v\n",
		stats.inputTime, stats.updateTime, stats.submitTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[evergreen] tick: %d | mode: %s | focus: %q | groups: %d | instances: %d | gesture: %s\n",
		s.ticks, s.state.Mode(), s.state.FocusID(), stats.groupCount, stats.instanceCount, s.GestureStatus())
	debugCheckProgress(s.groups)
}

// debugCheckProgress warns on stderr if a morph clock left [0, 1].
func debugCheckProgress(groups []*Group) {
	for _, g := range groups {
		if p := g.clock.Progress(); p < 0 || p > 1 {
			_, _ = fmt.Fprintf(os.Stderr, "[evergreen] warning: group %q progress %f out of range\n",
				g.Name(), p)
		}
	}
}
