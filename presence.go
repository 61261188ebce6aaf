package houdini

// Presence is the bit flag recording how an attribute came to exist.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Attribute appeared in the payload or was written by a builder.
	PresenceDefaultApplied                      // Attribute was materialized from a schema default.
)

// DefaultOnly reports whether the attribute exists only because a default
// was applied.
func (p Presence) DefaultOnly() bool {
	return p&PresenceDefaultApplied != 0 && p&PresenceSeen == 0
}

func (p Presence) String() string {
	switch {
	case p == 0:
		return "none"
	case p.DefaultOnly():
		return "default"
	case p&PresenceSeen != 0:
		return "seen"
	}
	return "unknown"
}
