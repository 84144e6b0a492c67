package presence

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Manager keeps the bot's status line in sync with what is playing.
// With one guild playing it shows the track title; with more it shows a
// count; with none it falls back to server statistics.
type Manager struct {
	session *discordgo.Session

	mu      sync.Mutex
	playing map[string]string // guildID -> track title
}

func NewManager(session *discordgo.Session) *Manager {
	return &Manager{
		session: session,
		playing: make(map[string]string),
	}
}

// TrackStarted records that a guild began playing a track and refreshes
// the status line.
func (pm *Manager) TrackStarted(guildID, title string) {
	pm.mu.Lock()
	pm.playing[guildID] = title
	pm.mu.Unlock()
	pm.refresh()
}

// SessionEnded forgets a guild's playback and refreshes the status line.
func (pm *Manager) SessionEnded(guildID string) {
	pm.mu.Lock()
	delete(pm.playing, guildID)
	pm.mu.Unlock()
	pm.refresh()
}

// refresh pushes the presence that matches the current playback state.
func (pm *Manager) refresh() {
	pm.mu.Lock()
	count := len(pm.playing)
	var title string
	for _, t := range pm.playing {
		title = t
		break
	}
	pm.mu.Unlock()

	switch count {
	case 0:
		pm.setDefault()
	case 1:
		pm.setListening(title)
	default:
		pm.setListening(fmt.Sprintf("music in %d servers", count))
	}
}

func (pm *Manager) setDefault() {
	guilds := pm.session.State.Guilds
	presence := discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name: fmt.Sprintf("%d servers", len(guilds)),
				Type: discordgo.ActivityTypeWatching,
			},
		},
	}

	if err := pm.session.UpdateStatusComplex(presence); err != nil {
		log.Printf("[Presence] failed to update presence: %v", err)
	}
}

func (pm *Manager) setListening(state string) {
	presence := discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name:  "to",
				Type:  discordgo.ActivityTypeListening,
				State: state,
			},
		},
	}

	if err := pm.session.UpdateStatusComplex(presence); err != nil {
		log.Printf("[Presence] failed to update presence: %v", err)
	}
}

// StartPeriodicUpdates refreshes the default presence periodically so
// the server count stays current.
func (pm *Manager) StartPeriodicUpdates() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			pm.refresh()
		}
	}()
}
