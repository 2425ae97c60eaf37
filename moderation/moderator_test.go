package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_CensorsForbiddenWords(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"troll", "spam"}, '*')
	req.NoError(err)

	req.Equal("what a ***** party", moderator.Censor("what a troll party"))
	req.Equal("**** and more ****", moderator.Censor("spam and more spam"))
}

func TestModerator_IsCaseInsensitive(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"troll"}, '*')
	req.NoError(err)

	req.Equal("***** alert", moderator.Censor("TrOLL alert"))
}

func TestModerator_LeavesCleanTextUntouched(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"troll"}, '*')
	req.NoError(err)

	original := "a perfectly friendly message"
	req.Equal(original, moderator.Censor(original))
}

func TestModerator_PreservesLengthAndSpacing(t *testing.T) {
	req := require.New(t)
	moderator, err := NewModerator([]string{"troll"}, '*')
	req.NoError(err)

	censored := moderator.Censor("pre troll post")
	req.Len(censored, len("pre troll post"))
	req.Equal("pre ***** post", censored)
}
