package handlers

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/internal/commands"
	"github.com/latoulicious/Minuet/internal/config"
)

// MessageHandler dispatches prefix commands. The prefix comes from
// configuration, so it is bound at registration time.
func MessageHandler(cfg *config.Config) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignore all messages created by the bot itself
		if m.Author.ID == s.State.User.ID {
			return
		}
		if m.GuildID == "" {
			return
		}

		if !strings.HasPrefix(m.Content, cfg.CommandPrefix) {
			return
		}

		args := strings.Fields(strings.TrimPrefix(m.Content, cfg.CommandPrefix))
		if len(args) == 0 {
			return
		}
		command := strings.ToLower(args[0])

		switch command {
		case "play", "p":
			commands.PlayCommand(s, m, args[1:])
		case "pause":
			commands.PauseCommand(s, m)
		case "resume":
			commands.ResumeCommand(s, m)
		case "skip":
			commands.SkipCommand(s, m)
		case "stop":
			commands.StopCommand(s, m)
		case "queue", "q":
			commands.QueueCommand(s, m, args[1:])
		case "nowplaying", "np":
			commands.NowPlayingCommand(s, m)
		case "clear":
			commands.ClearCommand(s, m)
		case "loop":
			commands.LoopCommand(s, m, args[1:])
		case "join":
			commands.JoinCommand(s, m)
		case "leave":
			commands.LeaveCommand(s, m)
		case "about":
			commands.AboutCommand(s, m)
		case "help", "h":
			commands.ShowHelpCommand(s, m)
		}
	}
}
