package explore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateOutputShortInputUntouched(t *testing.T) {
	assert.Equal(t, "short", TruncateOutput("short", 100, TruncateHeadTail))
	assert.Equal(t, "short", TruncateOutput("short", 0, TruncateHeadTail))
}

func TestTruncateOutputHeadTail(t *testing.T) {
	input := strings.Repeat("a", 50) + strings.Repeat("z", 50)

	out := TruncateOutput(input, 20, TruncateHeadTail)
	assert.True(t, strings.HasPrefix(out, "aaaaaaaaaa"))
	assert.True(t, strings.HasSuffix(out, "zzzzzzzzzz"))
	assert.Contains(t, out, "80 characters removed from the middle")
}

func TestTruncateOutputTail(t *testing.T) {
	input := strings.Repeat("a", 50) + strings.Repeat("z", 50)

	out := TruncateOutput(input, 30, TruncateTail)
	assert.True(t, strings.HasSuffix(out, strings.Repeat("z", 30)))
	assert.Contains(t, out, "first 70 characters removed")
}
