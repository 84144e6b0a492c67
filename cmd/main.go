package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/Minuet/internal/commands"
	"github.com/latoulicious/Minuet/internal/config"
	"github.com/latoulicious/Minuet/internal/handlers"
	"github.com/latoulicious/Minuet/internal/presence"
	"github.com/latoulicious/Minuet/pkg/cron"
	"github.com/latoulicious/Minuet/pkg/resolver"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Track metadata cache, shared by the resolver
	cache, err := resolver.NewTrackCache(cfg.CachePath)
	if err != nil {
		log.Fatalf("Failed to open track cache: %v", err)
	}
	defer cache.Close()

	// Create a new Discord session using the provided token
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	// Wire the command layer to the session registry and resolver
	commands.Setup(dg, cfg, resolver.NewYouTube(cache))

	// Create presence manager
	presenceManager := presence.NewManager(dg)
	commands.SetPresenceManager(presenceManager)

	// Register the message handler
	dg.AddHandler(handlers.MessageHandler(cfg))

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		log.Fatalf("Failed to open Discord session: %v", err)
	}

	// Start periodic presence updates
	presenceManager.StartPeriodicUpdates()

	// Background maintenance: evict idle sessions, prune the cache.
	maintenance, err := cron.NewMaintenance("0 * * * * *",
		cron.Task{
			Name: "idle-session-sweep",
			Run: func() error {
				for _, guildID := range commands.Registry().Sweep(cfg.IdleTimeout) {
					log.Printf("[Main] evicted idle session for guild %s", guildID)
				}
				return nil
			},
		},
		cron.Task{
			Name: "track-cache-cleanup",
			Run:  cache.CleanExpired,
		},
	)
	if err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}

	log.Println("Bot is running. Press CTRL-C to exit.")
	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	// Cleanly close down the Discord session.
	maintenance.Stop()
	commands.Shutdown()
	dg.Close()
}
