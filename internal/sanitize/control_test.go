package sanitize

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripControl_RemovesCSISequence(t *testing.T) {
	in := "hi\x1b[31mRED\x1b[0m"
	assert.Equal(t, "hiRED", StripControl(in))
}

func TestStripControl_RemovesBareESC(t *testing.T) {
	assert.Equal(t, "hello", StripControl("hel\x1blo"))
}

func TestStripControl_PreservesNewlineAndTab(t *testing.T) {
	in := "line one\nline two\tindented"
	assert.Equal(t, in, StripControl(in))
}

func TestStripControl_RemovesOtherControlBytes(t *testing.T) {
	in := "a\x01b\x02c\x7fd"
	assert.Equal(t, "abcd", StripControl(in))
}

func TestStripControl_RemovesOSCTerminatedByBEL(t *testing.T) {
	in := "before\x1b]0;title\x07after"
	assert.Equal(t, "beforeafter", StripControl(in))
}

func TestStripControl_RemovesOSCTerminatedByST(t *testing.T) {
	in := "before\x1b]0;title\x1b\\after"
	assert.Equal(t, "beforeafter", StripControl(in))
}

func TestStripControl_SoundnessForArbitraryControlBytes(t *testing.T) {
	for b := 0; b < 0x20; b++ {
		if b == '\n' || b == '\t' {
			continue
		}
		in := "x" + string(rune(b)) + "y"
		out := StripControl(in)
		for _, r := range out {
			assert.NotEqual(t, rune(b), r)
		}
	}
	out := StripControl("x\x7fy")
	assert.NotContains(t, out, "\x7f")
}

func TestStripControl_LeavesPlainTextUntouched(t *testing.T) {
	assert.Equal(t, "try again", StripControl("try again"))
}

func TestStripControl_ValidUTF8Output(t *testing.T) {
	out := StripControl("héllo\x1b[31m wörld")
	assert.True(t, utf8.ValidString(out))
}
