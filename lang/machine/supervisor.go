package machine

import "sync/atomic"

// Supervisor owns the whole execution of a program (spec §4.6): it creates
// the root universe, runs it to completion -- which transitively joins every
// universe the program ever forks -- and hands back the aggregated result
// map.
type Supervisor struct {
	cfg *Config
}

// NewSupervisor returns a Supervisor configured with cfg. A nil cfg is
// treated as an empty Config (defaults for debug/output names, no cap).
func NewSupervisor(cfg *Config) *Supervisor {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Supervisor{cfg: cfg}
}

// Run executes program against a fresh environment seeded with varCount and
// returns the complete, label-keyed result map once every spawned universe
// (root and all descendants) has terminated.
func (s *Supervisor) Run(program []Statement, varCount map[string]int) *Results {
	env := NewEnvironment(varCount)
	results := NewResults()
	var counter atomic.Int64

	root := newUniverse("root", env, s.cfg, results, program, &counter)
	if err := root.run(0); err != nil {
		results.Set("root", Outcome{Err: err})
	}
	return results
}
