package index

// State tracks the index lifecycle. Transitions only move forward through a
// build; Stale is entered when the corpus fingerprint on disk no longer
// matches the one recorded at the last build.
type State int

const (
	StateUnbuilt State = iota
	StateBuilding
	StateReady
	StateStale
)

func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "unbuilt"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	default:
		return "unknown"
	}
}
