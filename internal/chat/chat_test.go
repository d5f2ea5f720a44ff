package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMentions(t *testing.T) {
	assert.Equal(t, "<@123>", Mention("123"))
	assert.Equal(t, "<#456>", ChannelMention("456"))
}
