package audio

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestConnectWithoutChannel(t *testing.T) {
	p := NewPipeline(&discordgo.Session{}, "guild-1")

	assert.ErrorIs(t, p.Connect(), ErrNotConnected)
}

func TestConnectWhenAlreadyInChannel(t *testing.T) {
	p := NewPipeline(&discordgo.Session{}, "guild-1")
	p.SetChannel("chan-1")
	p.vc = &discordgo.VoiceConnection{ChannelID: "chan-1"}

	assert.ErrorIs(t, p.Connect(), ErrAlreadyConnected)
}

func TestDisconnectWithoutConnection(t *testing.T) {
	p := NewPipeline(&discordgo.Session{}, "guild-1")

	assert.ErrorIs(t, p.Disconnect(), ErrNotConnected)
	assert.False(t, p.Connected())
}
