package commands

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/pkg/player"
)

func PauseCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	setAnnounceChannel(m.GuildID, m.ChannelID)

	sess, ok := registry.Get(m.GuildID)
	if !ok {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "Nothing is playing.", 0xff0000)
		return
	}

	if err := sess.Pause(); err != nil {
		if errors.Is(err, player.ErrInvalidStateTransition) {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "Playback is not running, so there is nothing to pause.", 0xff0000)
		} else {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "Failed to pause playback.", 0xff0000)
		}
		return
	}

	sendEmbedMessage(s, m.ChannelID, "⏸️ Playback Paused", "Music playback has been paused.", 0xffa500)
}
