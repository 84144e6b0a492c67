package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/pkg/player"
	"github.com/latoulicious/Minuet/pkg/resolver"
)

// NowPlayingCommand shows the current track with playback progress.
func NowPlayingCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	setAnnounceChannel(m.GuildID, m.ChannelID)

	sess, ok := registry.Get(m.GuildID)
	if !ok {
		sendNothingPlayingEmbed(s, m.ChannelID)
		return
	}

	track, playing := sess.NowPlaying()
	if !playing {
		sendNothingPlayingEmbed(s, m.ChannelID)
		return
	}

	sendNowPlayingEmbed(s, m.ChannelID, sess, track)
}

// sendNothingPlayingEmbed sends an embed when nothing is playing.
func sendNothingPlayingEmbed(s *discordgo.Session, channelID string) {
	embed := &discordgo.MessageEmbed{
		Title:       "🎵 Now Playing",
		Description: "Nothing is currently playing",
		Color:       0x808080,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Use !play to start playing music",
		},
	}

	s.ChannelMessageSendEmbed(channelID, embed)
}

// sendNowPlayingEmbed sends a detailed now playing embed.
func sendNowPlayingEmbed(s *discordgo.Session, channelID string, sess *player.Session, track player.Track) {
	var statusEmoji, statusText string
	switch sess.State() {
	case player.StatePlaying:
		statusEmoji, statusText = "🟢", "Playing"
	case player.StatePaused:
		statusEmoji, statusText = "🟡", "Paused"
	default:
		statusEmoji, statusText = "🔴", "Stopped"
	}

	progress := fmt.Sprintf("%s / %s", formatDuration(sess.Position()), formatDuration(track.Duration))
	if track.Duration <= 0 {
		progress = formatDuration(sess.Position())
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🎵 Now Playing",
		Description: fmt.Sprintf("**%s**", track.Title),
		Color:       0x00ff00,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Requested by",
				Value:  track.RequestedBy,
				Inline: true,
			},
			{
				Name:   "Progress",
				Value:  progress,
				Inline: true,
			},
			{
				Name:   "Status",
				Value:  fmt.Sprintf("%s %s", statusEmoji, statusText),
				Inline: true,
			},
			{
				Name:   "Added to queue",
				Value:  track.AddedAt.Format("Jan 2, 2006 3:04 PM"),
				Inline: false,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Minuet",
		},
	}

	if track.ID != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{
			URL: fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", track.ID),
		}
	}

	if track.SourceURL != "" && resolver.IsYouTubeURL(track.SourceURL) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "🔗 YouTube Link",
			Value:  fmt.Sprintf("[Open in YouTube](%s)", track.SourceURL),
			Inline: true,
		})
	}

	s.ChannelMessageSendEmbed(channelID, embed)
}
