package pipeline

import (
	"maps"
	"slices"
)

// Default shell used for run steps when no shell modifier has been set.
const defaultShell = "/bin/sh"

// A single command executed inside the target, with optional scoped
// modifiers.
type Step struct {
	Run     string            // Shell command.
	Shell   string            // Shell override for this step.
	Workdir string            // Working directory override for this step.
	Env     map[string]string // Environment overrides for this step.
}

// Tracks accumulated modifiers during step execution.
//
// State flows linearly through the stages of a run. Modifiers that outlive a
// single command (the recipe environment, the source workdir once it has
// been materialized) update the state permanently via apply. Commands read
// the effective values for a single step via resolve without modifying the
// persistent state.
type stepState struct {
	shell   string
	workdir string
	env     map[string]string
}

// Creates a new [stepState] with default values.
func newStepState() *stepState {
	return &stepState{
		shell: defaultShell,
		env:   make(map[string]string),
	}
}

// Persists modifier fields from a step into the state.
func (s *stepState) apply(step Step) {
	if step.Shell != "" {
		s.shell = step.Shell
	}
	if step.Workdir != "" {
		s.workdir = step.Workdir
	}
	maps.Copy(s.env, step.Env)
}

// Returns a new [stepState] with step-level modifiers overlaid on the
// persistent state. The receiver is not modified.
func (s *stepState) resolve(step Step) *stepState {
	resolved := &stepState{
		shell:   s.shell,
		workdir: s.workdir,
		env:     make(map[string]string, len(s.env)+len(step.Env)),
	}
	maps.Copy(resolved.env, s.env)
	maps.Copy(resolved.env, step.Env)

	if step.Shell != "" {
		resolved.shell = step.Shell
	}
	if step.Workdir != "" {
		resolved.workdir = step.Workdir
	}

	return resolved
}

// Formats the environment as a sorted list of "key=value" strings suitable
// for passing to container exec.
func (s *stepState) environ() []string {
	env := make([]string, 0, len(s.env))
	for k, v := range s.env {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	return env
}
