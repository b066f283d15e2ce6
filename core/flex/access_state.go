package flex

import "fmt"

// AccessState is one discrete operating point of a unit. Utilisation is a
// normalised control factor in [-1, 1]: positive values draw, negative values
// inject and zero is the baseline.
type AccessState struct {
	name        string
	utilisation float64
	description string
}

// NewAccessState validates and returns an immutable access state.
func NewAccessState(name string, utilisation float64, description string) (AccessState, error) {
	if name == "" {
		return AccessState{}, fmt.Errorf("%w: access state name is required", ErrInvalidParameter)
	}
	if utilisation < -1 || utilisation > 1 {
		return AccessState{}, fmt.Errorf("%w: access state %s utilisation %v outside [-1, 1]", ErrInvalidParameter, name, utilisation)
	}
	return AccessState{name: name, utilisation: utilisation, description: description}, nil
}

func (s AccessState) Name() string         { return s.name }
func (s AccessState) Utilisation() float64 { return s.utilisation }
func (s AccessState) Description() string  { return s.description }

func (s AccessState) String() string {
	return fmt.Sprintf("%s(%+.2f)", s.name, s.utilisation)
}
