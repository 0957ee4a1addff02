package loader

// entryKind is the program kind and the origin of its host binary.
type entryKind uint8

const (
	graphicsHostBinary entryKind = iota
	graphicsTranslated
	computeHostBinary
	computeTranslated
)

func kindOf(compute, hostBinary bool) entryKind {
	switch {
	case compute && hostBinary:
		return computeHostBinary
	case compute:
		return computeTranslated
	case hostBinary:
		return graphicsHostBinary
	default:
		return graphicsTranslated
	}
}

func (k entryKind) compute() bool {
	return k == computeHostBinary || k == computeTranslated
}

// hostBinary reports whether the program was linked from a stored host
// binary rather than translated in this session.
func (k entryKind) hostBinary() bool {
	return k == graphicsHostBinary || k == computeHostBinary
}

func (k entryKind) String() string {
	switch k {
	case graphicsHostBinary:
		return "graphics/host"
	case graphicsTranslated:
		return "graphics/translated"
	case computeHostBinary:
		return "compute/host"
	case computeTranslated:
		return "compute/translated"
	default:
		return "unknown"
	}
}
