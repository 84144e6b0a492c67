package commands

import (
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ShowHelpCommand displays all available commands with their descriptions using embeds
func ShowHelpCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	prefix := cfg.CommandPrefix

	embed := &discordgo.MessageEmbed{
		Title:       "Minuet",
		Description: "Here are all the available commands for the bot:",
		Color:       0x00ff00,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Minuet | per-server music sessions",
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Music Commands",
				Value: strings.Join([]string{
					"• `" + prefix + "play <url or search>` / `" + prefix + "p` - Play a YouTube video or search result",
					"• `" + prefix + "nowplaying` / `" + prefix + "np` - Show the currently playing track with progress",
					"• `" + prefix + "pause` - Pause the current playback",
					"• `" + prefix + "resume` - Resume paused playback",
					"• `" + prefix + "skip` - Skip the currently playing track",
					"• `" + prefix + "stop` - Stop playback",
					"• `" + prefix + "loop off|queue|track` - Set the repeat mode",
				}, "\n"),
				Inline: false,
			},
			{
				Name: "Queue Commands",
				Value: strings.Join([]string{
					"• `" + prefix + "queue` / `" + prefix + "q` - List the current queue",
					"• `" + prefix + "queue list <page>` - Show a specific queue page",
					"• `" + prefix + "queue remove <index>` - Remove a track from the queue",
					"• `" + prefix + "queue swap <i> <j>` - Swap two queued tracks",
					"• `" + prefix + "queue move <from> <to>` - Move a queued track",
					"• `" + prefix + "queue clear` / `" + prefix + "clear` - Clear all queued tracks",
				}, "\n"),
				Inline: false,
			},
			{
				Name: "Voice Commands",
				Value: strings.Join([]string{
					"• `" + prefix + "join` - Join your voice channel",
					"• `" + prefix + "leave` - Stop playback and leave the voice channel",
				}, "\n"),
				Inline: false,
			},
			{
				Name: "Information Commands",
				Value: strings.Join([]string{
					"• `" + prefix + "about` - Show bot info, uptime, and stats",
					"• `" + prefix + "help` / `" + prefix + "h` - Show this help message",
				}, "\n"),
				Inline: false,
			},
			{
				Name: "💡 Tips",
				Value: strings.Join([]string{
					"• Join a voice channel **before** using music commands",
					"• Only **YouTube links and searches** are currently supported",
					"• Playlists and Shorts links are rejected, queue videos one by one",
				}, "\n"),
				Inline: false,
			},
		},
	}

	s.ChannelMessageSendEmbed(m.ChannelID, embed)
}
