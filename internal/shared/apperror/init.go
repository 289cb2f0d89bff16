package apperror

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Init builds the shared validator at startup. Request structs carry
// validate tags only: gin binding just decodes, and every rule runs through
// Validator after the input is trimmed, for the portal and the CLI alike.
func Init() {
	Validator()
}

// Validator returns the process-wide validator used for client-side checks
// before any request leaves the process.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonTagName)
	})
	return validate
}
