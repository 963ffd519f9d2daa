package gmt

import (
	"slices"
	"strings"
)

const ScheduleModeOneOff = "one-off"

// scheduleModes mirrors the submission form's schedule options.
var scheduleModes = map[string]struct{}{
	"one-off":                  {},
	"variance":                 {},
	"daily":                    {},
	"weekly":                   {},
	"commit":                   {},
	"commit-variance":          {},
	"tag":                      {},
	"tag-variance":             {},
	"statistical-significance": {},
}

// ValidScheduleMode reports whether the API accepts the given schedule mode.
func ValidScheduleMode(mode string) bool {
	_, ok := scheduleModes[mode]
	return ok
}

// ScheduleModes lists the accepted schedule modes in sorted order.
func ScheduleModes() []string {
	modes := make([]string, 0, len(scheduleModes))
	for mode := range scheduleModes {
		modes = append(modes, mode)
	}
	slices.Sort(modes)
	return modes
}

// Software is the wire-level submission payload for /v1/software/add.
type Software struct {
	Name         string         `json:"name"`
	RepoURL      string         `json:"repo_url"`
	MachineID    any            `json:"machine_id"`
	Branch       string         `json:"branch,omitempty"`
	Filename     string         `json:"filename,omitempty"`
	ScheduleMode string         `json:"schedule_mode"`
	Email        string         `json:"email,omitempty"`
	Variables    map[string]any `json:"usage_scenario_variables,omitempty"`
}

// trimmed returns a copy with every top-level string field stripped of
// surrounding whitespace. Variable names and values pass through untouched.
func (s Software) trimmed() Software {
	s.Name = strings.TrimSpace(s.Name)
	s.RepoURL = strings.TrimSpace(s.RepoURL)
	s.Branch = strings.TrimSpace(s.Branch)
	s.Filename = strings.TrimSpace(s.Filename)
	s.ScheduleMode = strings.TrimSpace(s.ScheduleMode)
	s.Email = strings.TrimSpace(s.Email)
	if id, ok := s.MachineID.(string); ok {
		s.MachineID = strings.TrimSpace(id)
	}
	return s
}

// ResultKind classifies a submission API reply. The set is closed: every
// reply maps to exactly one kind.
type ResultKind int

const (
	Accepted ResultKind = iota
	Success
	Failure
	EmptyNoContent
	ProtocolError
)

func (k ResultKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case EmptyNoContent:
		return "empty"
	case ProtocolError:
		return "protocol_error"
	}
	return "unknown"
}

// Result is the classified outcome of one API call.
type Result struct {
	Kind       ResultKind
	Message    string
	Body       any
	StatusCode int
}

// Machine is one measurement machine advertised by the API.
type Machine struct {
	ID     any    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
