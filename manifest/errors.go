package manifest

import "fmt"

// ConfigurationError indicates a manifest element with a missing or invalid attribute.
type ConfigurationError struct {
	// Element is the element tag ("erase" or "program"), empty for document errors
	Element string

	// Index is the position of the element among elements with the same tag
	Index int

	// Attr is the offending attribute
	Attr string

	// Value is the attribute text, empty when missing
	Value string

	// Reason describes the problem
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("invalid manifest: %s", e.Reason)
	}
	if e.Value == "" {
		return fmt.Sprintf("invalid manifest: %s #%d: %s %s", e.Element, e.Index, e.Attr, e.Reason)
	}
	return fmt.Sprintf("invalid manifest: %s #%d: %s=%q %s", e.Element, e.Index, e.Attr, e.Value, e.Reason)
}
