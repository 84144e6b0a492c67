package commands

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/internal/config"
	"github.com/latoulicious/Minuet/internal/presence"
	"github.com/latoulicious/Minuet/pkg/audio"
	"github.com/latoulicious/Minuet/pkg/player"
	"github.com/latoulicious/Minuet/pkg/resolver"
)

var (
	registry        *player.Registry
	resolve         resolver.Resolver
	cfg             *config.Config
	presenceManager *presence.Manager

	// One audio pipeline per guild, shared between the session factory
	// and the voice commands.
	pipelines  = make(map[string]*audio.Pipeline)
	pipelineMu sync.RWMutex

	// Text channel to announce auto-advance events in, per guild.
	// Updated on every command so announcements follow the conversation.
	announceChannels sync.Map // guildID -> channelID

	// Guilds with a running event listener goroutine.
	listeners   = make(map[string]bool)
	listenersMu sync.Mutex
)

// Setup wires the command layer. Must be called before any command is
// dispatched.
func Setup(dg *discordgo.Session, c *config.Config, r resolver.Resolver) {
	cfg = c
	resolve = r
	registry = player.NewRegistry(func(guildID string) *player.Session {
		sc := player.DefaultSessionConfig()
		sc.ClearQueueOnStop = c.StopClearsQueue
		return player.NewSession(guildID, getOrCreatePipeline(dg, guildID), sc)
	})
}

// SetPresenceManager hooks the status line up to playback events.
// Optional; commands work without it.
func SetPresenceManager(pm *presence.Manager) {
	presenceManager = pm
}

// Registry exposes the session registry for the idle sweeper in main.
func Registry() *player.Registry {
	return registry
}

// Shutdown closes all sessions and voice connections.
func Shutdown() {
	if registry != nil {
		registry.Shutdown()
	}

	pipelineMu.Lock()
	remaining := make([]*audio.Pipeline, 0, len(pipelines))
	for guildID, p := range pipelines {
		remaining = append(remaining, p)
		delete(pipelines, guildID)
	}
	pipelineMu.Unlock()

	for _, p := range remaining {
		if p.Connected() {
			p.Disconnect()
		}
	}
}

func notifyTrackStarted(guildID, title string) {
	if presenceManager != nil {
		presenceManager.TrackStarted(guildID, title)
	}
}

func notifySessionEnded(guildID string) {
	if presenceManager != nil {
		presenceManager.SessionEnded(guildID)
	}
}

// getOrCreatePipeline returns the guild's audio pipeline, creating it on
// first use.
func getOrCreatePipeline(dg *discordgo.Session, guildID string) *audio.Pipeline {
	pipelineMu.RLock()
	p, ok := pipelines[guildID]
	pipelineMu.RUnlock()
	if ok {
		return p
	}

	pipelineMu.Lock()
	defer pipelineMu.Unlock()
	if p, ok := pipelines[guildID]; ok {
		return p
	}
	p = audio.NewPipeline(dg, guildID)
	pipelines[guildID] = p
	return p
}

func getPipeline(guildID string) *audio.Pipeline {
	pipelineMu.RLock()
	defer pipelineMu.RUnlock()
	return pipelines[guildID]
}

// dropPipeline tears down a guild's pipeline. A teardown raced by a
// fresh session for the same guild is skipped: the new session owns the
// pipeline now.
func dropPipeline(guildID string) {
	if _, ok := registry.Get(guildID); ok {
		log.Printf("[Commands] keeping pipeline for guild %s, a live session owns it", guildID)
		return
	}

	pipelineMu.Lock()
	p := pipelines[guildID]
	delete(pipelines, guildID)
	pipelineMu.Unlock()

	if p != nil && p.Connected() {
		p.Disconnect()
	}
}

// setAnnounceChannel remembers where to post auto-advance announcements
// for a guild.
func setAnnounceChannel(guildID, channelID string) {
	announceChannels.Store(guildID, channelID)
}

func announceChannel(guildID string) string {
	if v, ok := announceChannels.Load(guildID); ok {
		return v.(string)
	}
	return ""
}

// ensureListener starts the per-guild goroutine that turns session
// events into channel announcements. Started at most once per live
// session; the goroutine exits when the session's event channel closes.
func ensureListener(s *discordgo.Session, sess *player.Session) {
	guildID := sess.GuildID()

	listenersMu.Lock()
	if listeners[guildID] {
		listenersMu.Unlock()
		return
	}
	listeners[guildID] = true
	listenersMu.Unlock()

	go func() {
		defer func() {
			listenersMu.Lock()
			delete(listeners, guildID)
			listenersMu.Unlock()
		}()

		for ev := range sess.Events() {
			// Cleanup must run even when no announce channel is known.
			if ev.Type == player.EventSessionEnded {
				log.Printf("[Commands] session ended for guild %s", ev.GuildID)
				notifySessionEnded(ev.GuildID)
				dropPipeline(ev.GuildID)
				continue
			}

			channelID := announceChannel(ev.GuildID)
			if channelID == "" {
				continue
			}
			switch ev.Type {
			case player.EventNowPlaying:
				if ev.Track != nil {
					notifyTrackStarted(ev.GuildID, ev.Track.Title)
					description := fmt.Sprintf("**%s** (Requested by: %s)", ev.Track.Title, ev.Track.RequestedBy)
					sendEmbedMessage(s, channelID, "🎶 Now Playing", description, 0x00ff00)
				}
			case player.EventPlaybackError:
				title := "the current track"
				if ev.Track != nil {
					title = fmt.Sprintf("**%s**", ev.Track.Title)
				}
				description := fmt.Sprintf("Playback of %s failed, moving on.", title)
				sendEmbedMessage(s, channelID, "❌ Playback Error", description, 0xff0000)
			}
		}
	}()
}

// sendEmbedMessage sends a simple embed to a channel.
func sendEmbedMessage(s *discordgo.Session, channelID, title, description string, color int) {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Printf("[Commands] failed to send embed to %s: %v", channelID, err)
	}
}

// formatDuration formats a duration into a human-readable string.
// Returns "live" for unknown lengths.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "live"
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if d < time.Hour {
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}
