package deform

import (
	"encoding/json"

	"mapped-wrap/internal/resolve"
)

// Binding is one target attached to a deformer. Index is the logical slot the
// target was attached at; it orders evaluation and is never reused.
type Binding struct {
	Index    int             `json:"index"`
	Target   string          `json:"target"`
	Envelope float64         `json:"envelope"`
	Mapping  resolve.Mapping `json:"mapping"`
}

// UnmarshalJSON defaults a missing envelope to 1.
func (b *Binding) UnmarshalJSON(data []byte) error {
	type plain Binding
	p := plain{Envelope: 1}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Binding(p)
	return nil
}

// State is the persistent state of one deformer instance.
type State struct {
	Name     string     `json:"name"`
	Base     string     `json:"base"`
	Envelope float64    `json:"envelope"`
	Targets  []*Binding `json:"targets"`
}

// UnmarshalJSON defaults a missing envelope to 1.
func (s *State) UnmarshalJSON(data []byte) error {
	type plain State
	p := plain{Envelope: 1}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = State(p)
	return nil
}

// NewState returns an empty deformer on base with envelope 1.
func NewState(name, base string) *State {
	return &State{Name: name, Base: base, Envelope: 1}
}

// NextIndex returns one past the highest logical index in use, or 0.
func (s *State) NextIndex() int {
	next := 0
	for _, b := range s.Targets {
		if b.Index >= next {
			next = b.Index + 1
		}
	}
	return next
}

// Add appends a binding for target at the next logical index.
func (s *State) Add(target string, m resolve.Mapping) *Binding {
	b := &Binding{
		Index:    s.NextIndex(),
		Target:   target,
		Envelope: 1,
		Mapping:  m,
	}
	s.Targets = append(s.Targets, b)
	return b
}

// Binding returns the binding for target, or nil.
func (s *State) Binding(target string) *Binding {
	for _, b := range s.Targets {
		if b.Target == target {
			return b
		}
	}
	return nil
}

// Remove drops the binding for target and reports whether one existed.
func (s *State) Remove(target string) bool {
	for i, b := range s.Targets {
		if b.Target == target {
			s.Targets = append(s.Targets[:i], s.Targets[i+1:]...)
			return true
		}
	}
	return false
}
