// Package components defines ECS components for the scene.
package components

import (
	"fmt"

	"github.com/pthm-cable/flock/flock"
)

// Swarm attaches an ensemble to an entity.
// Index is the ensemble's position in the scheduler's ensemble list.
type Swarm struct {
	Flock *flock.Flock
	Index int
}

// Label is the display name of an ensemble.
type Label struct {
	Name string
}

// Tint is the render color of an ensemble.
type Tint struct {
	R, G, B, A uint8
}

// ParseTint parses a "#rrggbb" color.
func ParseTint(s string) (Tint, error) {
	var r, g, b uint8
	if len(s) != 7 || s[0] != '#' {
		return Tint{}, fmt.Errorf("invalid color %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return Tint{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Tint{R: r, G: g, B: b, A: 255}, nil
}

// PointerTarget marks ensembles whose target point follows the pointer.
type PointerTarget struct{}
