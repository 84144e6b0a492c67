package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/pkg/audio"
	"github.com/latoulicious/Minuet/pkg/player"
	"github.com/latoulicious/Minuet/pkg/resolver"
)

// resolveTimeout bounds the search/extraction round-trip so a hung
// yt-dlp cannot wedge the command.
const resolveTimeout = 30 * time.Second

// PlayCommand resolves a URL or search query and enqueues the result.
// The first track of an idle session starts playing immediately.
func PlayCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 1 {
		sendEmbedMessage(s, m.ChannelID, "❌ Usage Error", "Please provide a YouTube URL or search query.", 0xff0000)
		return
	}

	guildID := m.GuildID
	setAnnounceChannel(guildID, m.ChannelID)

	voiceChannelID, err := audio.FindUserVoiceChannel(s, guildID, m.Author.ID)
	if err != nil {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "You must be in a voice channel to play music.", 0xff0000)
		return
	}

	input := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	track, err := resolve.Resolve(ctx, input, m.Author.Username)
	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrUnsupportedSource):
			sendEmbedMessage(s, m.ChannelID, "❌ Unsupported Link",
				"Playlists and Shorts are not supported. Give me a single video or a search query.", 0xff0000)
		case errors.Is(err, resolver.ErrNoResults):
			sendEmbedMessage(s, m.ChannelID, "❌ No Results", "Nothing found for that query.", 0xff0000)
		default:
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "Failed to get a playable audio stream. Please check the URL.", 0xff0000)
		}
		return
	}

	sess := registry.GetOrCreate(guildID)
	ensureListener(s, sess)
	getOrCreatePipeline(s, guildID).SetChannel(voiceChannelID)

	pos, err := sess.Enqueue(track)
	if errors.Is(err, player.ErrSessionClosed) {
		// Lost a race with idle eviction; retry on a fresh session.
		sess = registry.GetOrCreate(guildID)
		ensureListener(s, sess)
		getOrCreatePipeline(s, guildID).SetChannel(voiceChannelID)
		pos, err = sess.Enqueue(track)
	}
	if err != nil {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "Failed to start playback.", 0xff0000)
		return
	}

	if pos == 0 {
		notifyTrackStarted(guildID, track.Title)
		description := fmt.Sprintf("**%s** (%s) (Requested by: %s)",
			track.Title, formatDuration(track.Duration), track.RequestedBy)
		sendEmbedMessage(s, m.ChannelID, "🎶 Now Playing", description, 0x00ff00)
		return
	}
	description := fmt.Sprintf("✅ Added **%s** to queue (Position: %d)", track.Title, pos)
	sendEmbedMessage(s, m.ChannelID, "🎵 Song Added", description, 0x00ff00)
}
