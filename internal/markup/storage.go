package markup

// Storage macros are built with placeholder namespace prefixes, never with
// the vendor prefixes directly. The rewrite package remaps the placeholders
// to `ac:` and `ri:` as the final serialization step, after all HTML
// processing is done.
const (
	NSAc = "x-ac:"
	NSRi = "x-ri:"
)
