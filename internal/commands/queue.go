package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/pkg/player"
)

// tracksPerPage is how many queued tracks one queue page lists.
const tracksPerPage = 10

// QueueCommand shows the queue or mutates it via subcommands.
func QueueCommand(s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	setAnnounceChannel(m.GuildID, m.ChannelID)

	if len(args) < 1 {
		showQueue(s, m, 1)
		return
	}

	subcommand := strings.ToLower(args[0])
	switch subcommand {
	case "list":
		page := 1
		if len(args) > 1 {
			if n, err := strconv.Atoi(args[1]); err == nil {
				page = n
			}
		}
		showQueue(s, m, page)
	case "remove":
		if len(args) < 2 {
			s.ChannelMessageSend(m.ChannelID, "Usage: `!queue remove <index>`")
			return
		}
		removeFromQueue(s, m, args[1])
	case "swap":
		if len(args) < 3 {
			s.ChannelMessageSend(m.ChannelID, "Usage: `!queue swap <index> <index>`")
			return
		}
		swapInQueue(s, m, args[1], args[2])
	case "move":
		if len(args) < 3 {
			s.ChannelMessageSend(m.ChannelID, "Usage: `!queue move <from> <to>`")
			return
		}
		moveInQueue(s, m, args[1], args[2])
	case "clear":
		clearQueue(s, m)
	default:
		// Bare page number is a shortcut for list.
		if n, err := strconv.Atoi(subcommand); err == nil {
			showQueue(s, m, n)
			return
		}
		s.ChannelMessageSend(m.ChannelID, "Usage: `!queue [list|remove|swap|move|clear] [args...]`")
	}
}

// parseQueueIndex converts a user-facing 1-based position into the
// 0-based index the session expects.
func parseQueueIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	return n - 1, nil
}

func removeFromQueue(s *discordgo.Session, m *discordgo.MessageCreate, arg string) {
	sess, ok := registry.Get(m.GuildID)
	if !ok {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "No queue found for this server.", 0xff0000)
		return
	}

	index, err := parseQueueIndex(arg)
	if err != nil {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "Invalid position. Use `!queue list` to see queue positions.", 0xff0000)
		return
	}

	removed, err := sess.Remove(index)
	if err != nil {
		if errors.Is(err, player.ErrIndexOutOfRange) {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "No track at that position.", 0xff0000)
		} else {
			sendEmbedMessage(s, m.ChannelID, "❌ Error", "Failed to remove the track.", 0xff0000)
		}
		return
	}

	description := fmt.Sprintf("Removed **%s** from the queue.", removed.Title)
	sendEmbedMessage(s, m.ChannelID, "✅ Track Removed", description, 0x00ff00)
}

func swapInQueue(s *discordgo.Session, m *discordgo.MessageCreate, argA, argB string) {
	sess, ok := registry.Get(m.GuildID)
	if !ok {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "No queue found for this server.", 0xff0000)
		return
	}

	i, errA := parseQueueIndex(argA)
	j, errB := parseQueueIndex(argB)
	if errA != nil || errB != nil {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "Invalid positions. Use `!queue list` to see queue positions.", 0xff0000)
		return
	}

	if err := sess.SwapTracks(i, j); err != nil {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "No track at one of those positions.", 0xff0000)
		return
	}

	description := fmt.Sprintf("Swapped positions %d and %d.", i+1, j+1)
	sendEmbedMessage(s, m.ChannelID, "✅ Queue Updated", description, 0x00ff00)
}

func moveInQueue(s *discordgo.Session, m *discordgo.MessageCreate, argFrom, argTo string) {
	sess, ok := registry.Get(m.GuildID)
	if !ok {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "No queue found for this server.", 0xff0000)
		return
	}

	from, errA := parseQueueIndex(argFrom)
	to, errB := parseQueueIndex(argTo)
	if errA != nil || errB != nil {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "Invalid positions. Use `!queue list` to see queue positions.", 0xff0000)
		return
	}

	if err := sess.MoveTrack(from, to); err != nil {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "No track at one of those positions.", 0xff0000)
		return
	}

	description := fmt.Sprintf("Moved track from position %d to %d.", from+1, to+1)
	sendEmbedMessage(s, m.ChannelID, "✅ Queue Updated", description, 0x00ff00)
}

func clearQueue(s *discordgo.Session, m *discordgo.MessageCreate) {
	sess, ok := registry.Get(m.GuildID)
	if !ok {
		sendEmbedMessage(s, m.ChannelID, "❌ Error", "No queue found for this server.", 0xff0000)
		return
	}

	sess.ClearQueue()
	sendEmbedMessage(s, m.ChannelID, "✅ Queue Cleared", "Removed all queued tracks. The current track keeps playing.", 0x00ff00)
}

// showQueue lists the current track and one page of the queue.
func showQueue(s *discordgo.Session, m *discordgo.MessageCreate, page int) {
	sess, ok := registry.Get(m.GuildID)
	if !ok {
		s.ChannelMessageSend(m.ChannelID, "📭 Queue is empty.")
		return
	}

	current, playing := sess.NowPlaying()
	items := sess.Snapshot()
	if !playing && len(items) == 0 {
		s.ChannelMessageSend(m.ChannelID, "📭 Queue is empty.")
		return
	}

	totalPages := (len(items) + tracksPerPage - 1) / tracksPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var response strings.Builder
	response.WriteString("🎵 **Music Queue**\n\n")

	if playing {
		state := "🎶 **Now Playing:**"
		if sess.State() == player.StatePaused {
			state = "⏸️ **Paused:**"
		}
		response.WriteString(fmt.Sprintf("%s %s (%s) (Requested by: %s)\n",
			state, current.Title, formatDuration(current.Duration), current.RequestedBy))
		if mode := sess.Loop(); mode != player.LoopOff {
			response.WriteString(fmt.Sprintf("🔁 Loop: %s\n", mode))
		}
		response.WriteString("\n")
	}

	if len(items) == 0 {
		response.WriteString("📋 No songs in queue.\n")
	} else {
		response.WriteString("📋 **Up Next:**\n")
		start := (page - 1) * tracksPerPage
		end := start + tracksPerPage
		if end > len(items) {
			end = len(items)
		}
		for i, item := range items[start:end] {
			response.WriteString(fmt.Sprintf("%d. **%s** (%s) (Requested by: %s)\n",
				start+i+1, item.Title, formatDuration(item.Duration), item.RequestedBy))
		}
		if totalPages > 1 {
			response.WriteString(fmt.Sprintf("\nPage %d/%d. Use `!queue list <page>` for more.", page, totalPages))
		}
	}

	s.ChannelMessageSend(m.ChannelID, response.String())
}
