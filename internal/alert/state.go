package alert

// State is the alert classification of a symbol's current price.
type State string

const (
	// None marks "no prior alert" in the gate's history; it is never produced by Evaluate.
	None   State = ""
	Normal State = "NORMAL"
	Low    State = "LOW"
	High   State = "HIGH"
)

func (s State) String() string {
	if s == None {
		return "NONE"
	}
	return string(s)
}

// IsAlerting reports whether the state is one of the extremes.
func (s State) IsAlerting() bool {
	return s == Low || s == High
}
