package commands

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/pkg/player"
)

func SkipCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	setAnnounceChannel(m.GuildID, m.ChannelID)

	sess, ok := registry.Get(m.GuildID)
	if !ok {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "Nothing is playing.", 0xff0000)
		return
	}

	next, err := sess.Skip()
	if err != nil {
		if errors.Is(err, player.ErrNothingPlaying) {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "Nothing is playing.", 0xff0000)
		} else {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "Failed to skip the current track.", 0xff0000)
		}
		return
	}

	if next == nil {
		notifySessionEnded(m.GuildID)
		sendEmbedMessage(s, m.ChannelID, "⏭️ Skipped", "Skipped the current track. The queue is empty.", 0x00ff00)
		return
	}
	notifyTrackStarted(m.GuildID, next.Title)
	description := fmt.Sprintf("Now playing **%s** (Requested by: %s)", next.Title, next.RequestedBy)
	sendEmbedMessage(s, m.ChannelID, "⏭️ Skipped", description, 0x00ff00)
}
