package commands

import (
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
)

var startTime = time.Now()

// AboutCommand displays bot information including uptime, memory usage
// and active playback sessions.
func AboutCommand(s *discordgo.Session, m *discordgo.MessageCreate) {
	uptime := time.Since(startTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryUsage := fmt.Sprintf("%.2f MB", float64(memStats.Alloc)/1024/1024)

	embed := &discordgo.MessageEmbed{
		Title:       "Bot Information",
		Description: "Per-server music sessions for Discord.",
		Color:       0x00ff00,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Minuet",
		},
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Bot Name & Version",
				Value:  "Minuet v1.0.0",
				Inline: true,
			},
			{
				Name:   "Uptime",
				Value:  formatUptime(uptime),
				Inline: true,
			},
			{
				Name:   "Memory Usage",
				Value:  memoryUsage,
				Inline: true,
			},
			{
				Name:   "Go Version",
				Value:  runtime.Version(),
				Inline: true,
			},
			{
				Name:   "Servers",
				Value:  fmt.Sprintf("%d", len(s.State.Guilds)),
				Inline: true,
			},
			{
				Name:   "Active Sessions",
				Value:  fmt.Sprintf("%d", registry.Len()),
				Inline: true,
			},
		},
	}

	s.ChannelMessageSendEmbed(m.ChannelID, embed)
}

// formatUptime renders an uptime as the largest two useful units.
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm %ds", minutes, int(d.Seconds())%60)
	}
}
