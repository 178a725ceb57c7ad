package validation

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Seat labels are a row letter followed by a seat number, e.g. "E7" or "J20".
// Grid bounds are checked later against the specific show.
var seatLabelPattern = regexp.MustCompile(`^[A-Z][0-9]{1,2}$`)

// RegisterCustomValidators installs domain validators on gin's binding engine
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	return v.RegisterValidation("seatlabel", func(fl validator.FieldLevel) bool {
		return seatLabelPattern.MatchString(fl.Field().String())
	})
}
