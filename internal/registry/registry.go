// Package registry tracks the sorting implementations under test: one
// mandatory reference plus any number of named candidates.
package registry

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// Descriptor names one external sorting implementation. Command is either a
// bare executable name resolved through PATH or an explicit path.
type Descriptor struct {
	Name    string
	Command string
}

// Registry accumulates descriptors before resolution. Add never fails on
// unresolvable commands; that is Resolve's job, because candidates may be
// registered before they are installed.
type Registry struct {
	reference  Descriptor
	candidates []Descriptor
	log        *zap.Logger
}

// Resolved is the outcome of probing every registered descriptor. The
// candidate list only contains implementations whose commands exist.
type Resolved struct {
	Reference  Descriptor
	Candidates []Descriptor
}

// New creates a registry around the given reference implementation.
func New(reference Descriptor, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{reference: reference, log: log}
}

// Add registers a candidate. Names must be unique; a duplicate is a
// configuration error because results are reported by name.
func (r *Registry) Add(name, command string) error {
	if name == "" || command == "" {
		return fmt.Errorf("candidate needs both a name and a command, got name=%q command=%q", name, command)
	}
	if name == r.reference.Name {
		return fmt.Errorf("candidate name %q collides with the reference", name)
	}
	for _, c := range r.candidates {
		if c.Name == name {
			return fmt.Errorf("duplicate candidate name %q", name)
		}
	}
	r.candidates = append(r.candidates, Descriptor{Name: name, Command: command})
	return nil
}

// Resolve probes every descriptor for executability. A missing reference is
// fatal; missing candidates are dropped with a warning so one absent binary
// never sinks the whole run.
func (r *Registry) Resolve() (Resolved, error) {
	if _, err := exec.LookPath(r.reference.Command); err != nil {
		return Resolved{}, fmt.Errorf("reference implementation %q not found: %w", r.reference.Command, err)
	}

	res := Resolved{Reference: r.reference}
	for _, c := range r.candidates {
		if _, err := exec.LookPath(c.Command); err != nil {
			r.log.Warn("skipping unavailable candidate",
				zap.String("name", c.Name),
				zap.String("command", c.Command),
				zap.Error(err))
			continue
		}
		res.Candidates = append(res.Candidates, c)
	}
	return res, nil
}
