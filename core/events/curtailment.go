package events

// Curtailment is published when the simulation had to reduce a command
// before an asset accepted it. RequestedKW and ExecutedKW are signed, supply
// positive.
type Curtailment struct {
	RunID       string
	Step        int
	Asset       string
	RequestedKW float64
	ExecutedKW  float64
	Violations  []string
}
