package main

import (
	"sort"

	"github.com/cheggaaa/pb/v3"
)

// stageBars shows one progress bar per pipeline stage.
type stageBars struct {
	stage string
	bar   *pb.ProgressBar
}

func newStageBars() *stageBars {
	return &stageBars{}
}

func (s *stageBars) update(stage string, done, total int) {
	if stage != s.stage {
		s.finish()
		s.stage = stage
		s.bar = pb.StartNew(total)
		s.bar.Set("prefix", stage+" ")
	}
	s.bar.SetCurrent(int64(done))
}

// finish is safe on a nil receiver and on repeated calls.
func (s *stageBars) finish() {
	if s == nil || s.bar == nil {
		return
	}
	s.bar.Finish()
	s.bar = nil
	s.stage = ""
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
