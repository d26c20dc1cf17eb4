// Package lifecycle implements the ticket status machine and the intake
// rules for new tickets.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/Reissam/ajuda-tech-hub/internal/apperr"
	"github.com/Reissam/ajuda-tech-hub/internal/models"
)

// Policy names accepted by ParsePolicy.
const (
	PolicyUnguarded = "unguarded"
	PolicyForward   = "forward"
)

// Machine decides which statuses exist and which moves between them are
// allowed. The zero value is not usable; build one with New.
type Machine struct {
	statuses []models.Status
	// nil means any enumerated status is reachable from any other.
	table map[models.Status]map[models.Status]bool
}

type Option func(*Machine)

// WithClosed enables the terminal closed state.
func WithClosed() Option {
	return func(m *Machine) {
		m.statuses = append(m.statuses, models.StatusClosed)
	}
}

// Forward restricts moves to the natural field flow: open → in_progress →
// resolved (→ closed), open → resolved directly, and reopening to open.
func Forward() Option {
	return func(m *Machine) {
		m.table = map[models.Status]map[models.Status]bool{}
	}
}

func New(opts ...Option) *Machine {
	m := &Machine{statuses: []models.Status{models.StatusOpen, models.StatusInProgress, models.StatusResolved}}
	for _, opt := range opts {
		opt(m)
	}
	if m.table != nil {
		m.fillForward()
	}
	return m
}

// ParsePolicy builds a machine from configuration values.
func ParsePolicy(name string, allowClosed bool) (*Machine, error) {
	var opts []Option
	if allowClosed {
		opts = append(opts, WithClosed())
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyUnguarded:
	case PolicyForward:
		opts = append(opts, Forward())
	default:
		return nil, fmt.Errorf("unknown transition policy %q", name)
	}
	return New(opts...), nil
}

func (m *Machine) fillForward() {
	allow := func(from models.Status, to ...models.Status) {
		if !m.Valid(from) {
			return
		}
		if m.table[from] == nil {
			m.table[from] = map[models.Status]bool{}
		}
		for _, s := range to {
			if m.Valid(s) {
				m.table[from][s] = true
			}
		}
	}
	allow(models.StatusOpen, models.StatusInProgress, models.StatusResolved)
	allow(models.StatusInProgress, models.StatusOpen, models.StatusResolved)
	allow(models.StatusResolved, models.StatusInProgress, models.StatusOpen, models.StatusClosed)
	allow(models.StatusClosed, models.StatusOpen)
}

// Statuses lists the enumerated statuses in lifecycle order.
func (m *Machine) Statuses() []models.Status {
	return append([]models.Status(nil), m.statuses...)
}

func (m *Machine) Valid(s models.Status) bool {
	for _, candidate := range m.statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Guarded reports whether the machine enforces a transition table.
func (m *Machine) Guarded() bool { return m.table != nil }

// CanTransition returns nil when from → to is allowed. Setting the current
// status again is always a no-op move and allowed.
func (m *Machine) CanTransition(from, to models.Status) error {
	if !m.Valid(to) {
		return apperr.Validation(fmt.Sprintf("unknown status %q", to)).WithDetail("status", "is invalid")
	}
	if from == to || m.table == nil {
		return nil
	}
	if m.table[from][to] {
		return nil
	}
	return apperr.New(apperr.KindConflict, fmt.Sprintf("cannot move ticket from %s to %s", from, to))
}

// Targets lists the statuses reachable from from, excluding from itself.
func (m *Machine) Targets(from models.Status) []models.Status {
	out := make([]models.Status, 0, len(m.statuses))
	for _, s := range m.statuses {
		if s == from {
			continue
		}
		if m.CanTransition(from, s) == nil {
			out = append(out, s)
		}
	}
	return out
}
