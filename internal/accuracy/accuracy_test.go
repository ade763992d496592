package accuracy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		in     string
		want   string
	}{
		{"raw keeps everything", Raw, "Hello, World!", "Hello, World!"},
		{"research standard folds and strips", ResearchStandard, "Hello, World!", "helloworld"},
		{"whitespace only", Policy{StripWhitespace: true}, "a b\tc\nd", "abcd"},
		{"punctuation only", Policy{StripPunctuation: true}, "a.b,c!", "abc"},
		{"nfkc folds fullwidth", Policy{NFKC: true}, "ＡＢＣ１２３", "ABC123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Normalize(tt.in))
		})
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, ResearchStandard.Ratio("same text", "same text"))
	assert.Equal(t, 100.0, ResearchStandard.Ratio("", ""))
	assert.Equal(t, 0.0, ResearchStandard.Ratio("abc", ""))
	assert.Equal(t, 0.0, ResearchStandard.Ratio("", "abc"))
	assert.Equal(t, 0.0, ResearchStandard.Ratio("aaa", "bbb"))

	// Case and punctuation differences vanish under the research policy.
	assert.Equal(t, 100.0, ResearchStandard.Ratio("Hello, World!", "hello world"))
	assert.Less(t, Raw.Ratio("Hello", "hello"), 100.0)

	// Partial overlap lands strictly between the extremes.
	partial := ResearchStandard.Ratio("abcdef", "abcxyz")
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 100.0)
}

func TestCharacterAccuracy(t *testing.T) {
	assert.Equal(t, 100.0, ResearchStandard.CharacterAccuracy("same", "same"))
	assert.Equal(t, 100.0, ResearchStandard.CharacterAccuracy("", ""))
	assert.Equal(t, 0.0, ResearchStandard.CharacterAccuracy("something", ""))

	// One substitution in a four-rune reference is 75%.
	assert.InDelta(t, 75.0, Raw.CharacterAccuracy("abxd", "abcd"), 0.001)

	// A wildly long prediction clamps at zero rather than going negative.
	assert.Equal(t, 0.0, Raw.CharacterAccuracy("aaaaaaaaaaaaaaaaaaaa", "ab"))
}

func TestLCSLength(t *testing.T) {
	assert.Equal(t, 3, lcsLength([]rune("abcde"), []rune("ace")))
	assert.Equal(t, 0, lcsLength([]rune("abc"), []rune("xyz")))
	assert.Equal(t, 4, lcsLength([]rune("abcd"), []rune("abcd")))
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance([]rune("abc"), []rune("abc")))
	assert.Equal(t, 1, editDistance([]rune("abc"), []rune("abd")))
	assert.Equal(t, 3, editDistance([]rune("kitten"), []rune("sitting")))
}
