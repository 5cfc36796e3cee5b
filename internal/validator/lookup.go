package validator

import (
	"fmt"

	"github.com/samber/mo"

	"github.com/Raymond9734/customer-registry/internal/models"
)

// Require unwraps a lookup result or returns a not found error naming the
// label and value that were searched for.
func Require[T any](result mo.Option[T], label, value string) (T, error) {
	v, ok := result.Get()
	if !ok {
		var zero T
		return zero, models.ErrNotFoundWithMsg(fmt.Sprintf("no record found with %s %s", label, value))
	}
	return v, nil
}
