package commands

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/pkg/player"
)

// LoopCommand shows or changes the guild's repeat mode.
func LoopCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	setAnnounceChannel(m.GuildID, m.ChannelID)

	sess := registry.GetOrCreate(m.GuildID)
	ensureListener(s, sess)

	if len(args) < 1 {
		description := fmt.Sprintf("Loop mode is currently **%s**. Use `!loop off|queue|track` to change it.", sess.Loop())
		sendEmbedMessage(s, m.ChannelID, "🔁 Loop", description, 0x00ff00)
		return
	}

	var mode player.LoopMode
	switch strings.ToLower(args[0]) {
	case "off", "none":
		mode = player.LoopOff
	case "queue", "all":
		mode = player.LoopQueue
	case "track", "song", "one":
		mode = player.LoopTrack
	default:
		sendEmbedMessage(s, m.ChannelID, "❌ Usage Error", "Usage: `!loop off|queue|track`", 0xff0000)
		return
	}

	sess.SetLoop(mode)
	sendEmbedMessage(s, m.ChannelID, "🔁 Loop", fmt.Sprintf("Loop mode set to **%s**.", mode), 0x00ff00)
}
