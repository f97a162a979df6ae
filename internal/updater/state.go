package updater

// State is a step of the per-tool update state machine. States only ever
// advance, except for the jump to StateFailed.
type State int

const (
	StatePending State = iota
	StatePreHook
	StateResolving
	StateDownloading
	StateExtracting
	StatePostUnpackHook
	StateInstalling
	StatePersisting
	StatePostHook
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StatePending:        "pending",
	StatePreHook:        "pre-hook",
	StateResolving:      "resolving",
	StateDownloading:    "downloading",
	StateExtracting:     "extracting",
	StatePostUnpackHook: "post-unpack-hook",
	StateInstalling:     "installing",
	StatePersisting:     "persisting",
	StatePostHook:       "post-hook",
	StateDone:           "done",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
