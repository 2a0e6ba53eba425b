package control

import (
	"fmt"
	"sync"
)

// Map translates one snapshot into a velocity command and the actions whose
// buttons went from released in prev to pressed in cur. A nil prev counts as
// every button released. Axis values pass through unscaled and unclamped.
//
// A binding that points past the end of cur is an integration error: Map
// returns it and emits nothing, rather than substituting zero.
func Map(b Bindings, cur Snapshot, prev *Snapshot) (Velocity, []Action, error) {
	var vals [4]float64
	for i, c := range Channels {
		ab, ok := b.Axes[c]
		if !ok {
			return Velocity{}, nil, fmt.Errorf("%w: %s", ErrMissingChannel, c)
		}
		v, ok := cur.axis(ab.Axis)
		if !ok {
			return Velocity{}, nil, fmt.Errorf("%w: %s axis %d, snapshot has %d axes", ErrAxisOutOfRange, c, ab.Axis, len(cur.Axes))
		}
		vals[i] = ab.sign() * v
	}

	var vel Velocity
	vel.Linear.X = vals[0]
	vel.Linear.Y = vals[1]
	vel.Linear.Z = vals[2]
	vel.Angular.Z = vals[3]

	var triggered []Action
	for _, a := range Actions {
		id, bound := b.Buttons[a]
		if !bound {
			continue
		}
		pressed, ok := cur.button(id)
		if !ok {
			return Velocity{}, nil, fmt.Errorf("%w: %s button %d, snapshot has %d buttons", ErrButtonOutOfRange, a, id, len(cur.Buttons))
		}
		if !pressed {
			continue
		}
		if prev != nil {
			if was, _ := prev.button(id); was {
				continue
			}
		}
		triggered = append(triggered, a)
	}

	return vel, triggered, nil
}

// Mapper keeps the one prior snapshot needed for edge detection.
type Mapper struct {
	bindings Bindings

	mu   sync.Mutex
	prev *Snapshot
}

func NewMapper(b Bindings) (*Mapper, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &Mapper{bindings: b.Clone()}, nil
}

// Next maps cur against the previously accepted snapshot. A rejected
// snapshot does not replace the prior one.
func (m *Mapper) Next(cur Snapshot) (Velocity, []Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vel, actions, err := Map(m.bindings, cur, m.prev)
	if err != nil {
		return Velocity{}, nil, err
	}
	accepted := cur.Clone()
	m.prev = &accepted
	return vel, actions, nil
}

// Reset forgets the prior snapshot, so buttons already held on the next
// snapshot trigger again.
func (m *Mapper) Reset() {
	m.mu.Lock()
	m.prev = nil
	m.mu.Unlock()
}

func (m *Mapper) Bindings() Bindings {
	return m.bindings.Clone()
}
