package events

// RunStarted is published before the first step of a simulation run.
type RunStarted struct {
	RunID   string
	Steps   int
	DtHours float64
	Assets  []string
}
