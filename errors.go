package coverbuilder

import "fmt"

// InvalidThemeError reports a theme that is neither a known color name nor a
// valid hex color, or a theme image that could not be used.
type InvalidThemeError struct {
	Theme string
	Err   error
}

func (e *InvalidThemeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid theme %q: %v", e.Theme, e.Err)
	}
	return fmt.Sprintf("invalid theme %q: not a color name or hex value", e.Theme)
}

func (e *InvalidThemeError) Unwrap() error { return e.Err }

// InvalidParameterError reports a numeric option outside its range or a
// malformed ratio string. Name is the option name as the CLI spells it.
type InvalidParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

// WriteError reports a destination that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func paramRangeError[T int | float64](name string, v, lo, hi T) error {
	return &InvalidParameterError{
		Name:   name,
		Value:  v,
		Reason: fmt.Sprintf("must be within [%v, %v]", lo, hi),
	}
}
