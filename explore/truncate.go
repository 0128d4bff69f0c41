package explore

import "fmt"

// TruncationMode specifies how oversized output is trimmed.
type TruncationMode string

const (
	TruncateHeadTail TruncationMode = "head_tail"
	TruncateTail     TruncationMode = "tail"
)

// defaultResultCharLimit bounds the text stored in an Observation. The cache
// always keeps the full value.
const defaultResultCharLimit = 20000

// TruncateOutput applies character-based truncation to output.
func TruncateOutput(output string, maxChars int, mode TruncationMode) string {
	if maxChars <= 0 || len(output) <= maxChars {
		return output
	}
	removed := len(output) - maxChars

	switch mode {
	case TruncateTail:
		return fmt.Sprintf("[truncated: first %d characters removed]\n\n", removed) +
			output[removed:]
	default:
		half := maxChars / 2
		return output[:half] +
			fmt.Sprintf("\n\n[truncated: %d characters removed from the middle]\n\n", removed) +
			output[len(output)-half:]
	}
}
