package host

// Outline styles understood by hosts.
const (
	OutlineSolid  = "solid"
	OutlineDashed = "dashed"
	OutlineDotted = "dotted"
	OutlineDouble = "double"
)

// DefaultOutlineWidth is the width of a guide mark.
const DefaultOutlineWidth = "1px"

// DecorationOptions describes how guide marks look.
type DecorationOptions struct {
	OutlineWidth string
	OutlineStyle string

	// OutlineColor is empty for the host default.
	OutlineColor string
}

// DefaultDecorationOptions returns a solid 1px outline in the host colour.
func DefaultDecorationOptions() DecorationOptions {
	return DecorationOptions{
		OutlineWidth: DefaultOutlineWidth,
		OutlineStyle: OutlineSolid,
	}
}

// DecorationStyle is a host rendering resource. It must be disposed when it
// is no longer used.
type DecorationStyle interface {
	Disposable

	// Options returns the options the style was created with.
	Options() DecorationOptions
}
