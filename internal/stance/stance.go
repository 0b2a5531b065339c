package stance

// Stance is the discrete pose currently attributed to the player. The core
// only produces and consumes these tags; the rendering layer maps them to
// pose descriptors.
type Stance string

const (
	Idle          Stance = "idle"
	Guard         Stance = "guard"
	GuardLeft     Stance = "guardLeft"
	GuardRight    Stance = "guardRight"
	JabLeft       Stance = "jabLeft"
	JabRight      Stance = "jabRight"
	HookLeft      Stance = "hookLeft"
	HookRight     Stance = "hookRight"
	UppercutLeft  Stance = "uppercutLeft"
	UppercutRight Stance = "uppercutRight"
	DuckLeft      Stance = "duckLeft"
	DuckRight     Stance = "duckRight"
	BlockBody     Stance = "blockBody"
)

// All lists every stance the classifier can produce plus the punch-driven
// uppercut variants used by renderers.
var All = []Stance{
	Idle, Guard, GuardLeft, GuardRight,
	JabLeft, JabRight, HookLeft, HookRight,
	UppercutLeft, UppercutRight, DuckLeft, DuckRight, BlockBody,
}

// Row indices of the logical grid.
const (
	rowTop    = 0
	rowMiddle = 1
	rowBottom = 2
)

// Column indices of the logical grid, after mirroring correction.
const (
	colLeft  = 0
	colRight = 1
)

// Classify maps the pair of logical zones for the current frame to exactly
// one stance. A nil zone means that hand was not detected this frame. The
// rule table is evaluated in priority order, first match wins; it is a pure
// function with no history, so the stance may flip every frame. Smoothing,
// if wanted, belongs to the rendering layer.
func Classify(left, right *Zone) Stance {
	switch {
	case left == nil && right == nil:
		return Idle
	case left != nil && right != nil:
		return classifyPair(normalize(*left), normalize(*right))
	case left != nil:
		return classifyLeftOnly(normalize(*left))
	default:
		return classifyRightOnly(normalize(*right))
	}
}

func classifyPair(l, r Zone) Stance {
	switch {
	case l.Row == rowTop && r.Row == rowTop:
		switch {
		case l.Col == colLeft && r.Col == colLeft:
			return GuardLeft
		case l.Col == colRight && r.Col == colRight:
			return GuardRight
		default:
			return Guard
		}
	case l.Row == rowBottom && r.Row == rowBottom:
		if l.Col == colLeft || r.Col == colLeft {
			return DuckLeft
		}
		return DuckRight
	case l.Row == rowMiddle && r.Row == rowMiddle:
		return BlockBody
	case l.Row == rowTop && r.Row >= rowMiddle:
		return JabLeft
	case r.Row == rowTop && l.Row >= rowMiddle:
		return JabRight
	default:
		return Guard
	}
}

func classifyLeftOnly(z Zone) Stance {
	switch z.Row {
	case rowTop:
		return JabLeft
	case rowMiddle:
		if z.Col == colLeft {
			return HookLeft
		}
		return BlockBody
	default:
		return DuckLeft
	}
}

func classifyRightOnly(z Zone) Stance {
	switch z.Row {
	case rowTop:
		return JabRight
	case rowMiddle:
		if z.Col == colRight {
			return HookRight
		}
		return BlockBody
	default:
		return DuckRight
	}
}

// normalize clamps a zone into the logical grid so the rule table stays
// total even for out-of-range input.
func normalize(z Zone) Zone {
	return Zone{
		Row: clamp(z.Row, 0, LogicalRows-1),
		Col: clamp(z.Col, 0, LogicalCols-1),
	}
}
