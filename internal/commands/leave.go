package commands

import (
	"github.com/bwmarrin/discordgo"
)

// LeaveCommand ends the guild's session and disconnects from voice.
func LeaveCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	guildID := m.GuildID
	setAnnounceChannel(guildID, m.ChannelID)

	if _, ok := registry.Get(guildID); !ok {
		p := getPipeline(guildID)
		if p == nil || !p.Connected() {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "I'm not in a voice channel.", 0xff0000)
			return
		}
		dropPipeline(guildID)
		sendEmbedMessage(s, m.ChannelID, "👋 Left Voice", "Disconnected from the voice channel.", 0x00ff00)
		return
	}

	// Closing the session emits a session-ended event, which drops the
	// pipeline and the voice connection with it.
	registry.Remove(guildID)
	sendEmbedMessage(s, m.ChannelID, "👋 Left Voice", "Stopped playback and disconnected.", 0x00ff00)
}
