package commands

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/pkg/player"
)

func ResumeCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	setAnnounceChannel(m.GuildID, m.ChannelID)

	sess, ok := registry.Get(m.GuildID)
	if !ok {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "Nothing is playing.", 0xff0000)
		return
	}

	if err := sess.Resume(); err != nil {
		if errors.Is(err, player.ErrInvalidStateTransition) {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "Playback is not paused.", 0xff0000)
		} else {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "Failed to resume playback.", 0xff0000)
		}
		return
	}

	sendEmbedMessage(s, m.ChannelID, "▶️ Playback Resumed", "Music playback has been resumed.", 0x00ff00)
}
