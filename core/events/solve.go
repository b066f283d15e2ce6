package events

import "time"

// Solved is published after each optimizer call. Err is nil on success.
type Solved struct {
	Models    int
	Variables int
	Timesteps int
	Objective float64
	Duration  time.Duration
	Err       error
}
