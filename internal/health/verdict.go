package health

// Verdict classifies the health of a resource or an aggregate of resources.
// The enumeration is ordered worst-first; a lower value always dominates when
// verdicts are merged.
type Verdict int

const (
	VerdictError Verdict = iota
	VerdictBlocked
	VerdictWaiting
	VerdictMaintenance
	VerdictActive
	VerdictUnknown
)

func (v Verdict) String() string {
	switch v {
	case VerdictError:
		return "error"
	case VerdictBlocked:
		return "blocked"
	case VerdictWaiting:
		return "waiting"
	case VerdictMaintenance:
		return "maintenance"
	case VerdictActive:
		return "active"
	default:
		return "unknown"
	}
}

// Worse reports whether v ranks worse than other.
func (v Verdict) Worse(other Verdict) bool {
	return v < other
}
