package editor

// maskRune is the character a password panel shows for each hidden rune.
const maskRune = '*'

// ReconstructPassword recovers the real password after an edit to a masked
// panel, where the panel showed one mask character per stored rune. A
// shorter text is a truncation, an equal-length text replaces the first
// visible character in place, and a longer text appends every visible
// character to the current password.
func ReconstructPassword(current, edited string) string {
	cur := []rune(current)
	ed := []rune(edited)

	switch {
	case len(ed) < len(cur):
		return string(cur[:len(ed)])

	case len(ed) == len(cur):
		for i, r := range ed {
			if r != maskRune {
				out := make([]rune, len(cur))
				copy(out, cur)
				out[i] = r
				return string(out)
			}
		}
		return current

	default:
		out := make([]rune, 0, len(ed))
		out = append(out, cur...)
		for _, r := range ed {
			if r != maskRune {
				out = append(out, r)
			}
		}
		return string(out)
	}
}
