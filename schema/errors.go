package schema

import "github.com/pkg/errors"

var (
	// ErrStructuralMismatch is returned when a group's declared child count
	// does not match the elements available in the flat schema.
	ErrStructuralMismatch = errors.New("schema structure mismatch")

	// ErrUnsupportedShape is returned for LIST or MAP annotated groups that
	// match neither the 3-level nor the legacy 2-level encodings.
	ErrUnsupportedShape = errors.New("unsupported schema shape")

	// ErrMissingRoot is returned when the flat schema does not start with a
	// group element.
	ErrMissingRoot = errors.New("missing schema root")

	// ErrDuplicateName is returned when two top-level fields resolve to the
	// same name under the configured case policy.
	ErrDuplicateName = errors.New("duplicate field name")
)
