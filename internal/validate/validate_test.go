package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Step  float64 `validate:"required,gt=0"`
	Power float64 `validate:"gte=0"`
	Mode  string  `validate:"omitempty,oneof=a b"`
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(sample{Step: 0.25}))

	err := Struct(sample{Power: -1, Mode: "c"})
	var fe *FieldsError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, []string{"Step"}, fe.Missing)
	assert.Len(t, fe.Invalid, 2)
	assert.Contains(t, err.Error(), "missing Step")
}
