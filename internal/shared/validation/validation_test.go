package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seatPayload struct {
	Seats []string `binding:"required,dive,seatlabel"`
}

func TestSeatLabelValidator(t *testing.T) {
	require.NoError(t, RegisterCustomValidators())

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	valid := seatPayload{Seats: []string{"A1", "E7", "J20", "Z99"}}
	assert.NoError(t, v.Struct(valid))

	for _, label := range []string{"", "a1", "A", "1A", "A100", "AA1", "A-1"} {
		err := v.Struct(seatPayload{Seats: []string{label}})
		assert.Error(t, err, "label %q should fail validation", label)
	}
}
