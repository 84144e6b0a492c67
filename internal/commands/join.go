package commands

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/pkg/audio"
)

// JoinCommand connects the bot to the caller's voice channel without
// starting playback.
func JoinCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	guildID := m.GuildID
	setAnnounceChannel(guildID, m.ChannelID)

	channelID, err := audio.FindUserVoiceChannel(s, guildID, m.Author.ID)
	if err != nil {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "You must be in a voice channel first.", 0xff0000)
		return
	}

	sess := registry.GetOrCreate(guildID)
	ensureListener(s, sess)

	p := getOrCreatePipeline(s, guildID)
	p.SetChannel(channelID)
	if err := p.Connect(); err != nil {
		if errors.Is(err, audio.ErrAlreadyConnected) {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "I'm already in that voice channel.", 0xff0000)
			return
		}
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "Failed to join the voice channel.", 0xff0000)
		return
	}

	sendEmbedMessage(s, m.ChannelID, "🔊 Joined Voice", "Connected and ready. Use `!play` to queue something.", 0x00ff00)
}
