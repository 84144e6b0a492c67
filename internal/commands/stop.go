package commands

import (
	"github.com/bwmarrin/discordgo"
)

func StopCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	setAnnounceChannel(m.GuildID, m.ChannelID)

	description := stopSession(m.GuildID)
	sendEmbedMessage(s, m.ChannelID, "⏹️ Playback Stopped", description, 0xffa500)
}

// stopSession halts the guild's playback. Stop is idempotent all the
// way up: a guild with no session (or an idle one) still gets a
// success reply.
func stopSession(guildID string) string {
	sess, ok := registry.Get(guildID)
	if !ok {
		return "Nothing was playing."
	}

	sess.Stop()
	notifySessionEnded(guildID)
	return "Playback stopped."
}
