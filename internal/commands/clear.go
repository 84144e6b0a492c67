package commands

import (
	"github.com/bwmarrin/discordgo"
)

// ClearCommand empties the pending queue. Shortcut for `queue clear`.
func ClearCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	setAnnounceChannel(m.GuildID, m.ChannelID)

	sess, ok := registry.Get(m.GuildID)
	if !ok || sess.QueueLen() == 0 {
		sendEmbedMessage(s, m.ChannelID, "📭 Queue Already Empty", "There are no queued tracks to clear.", 0x808080)
		return
	}

	clearQueue(s, m)
}
