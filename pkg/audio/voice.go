package audio

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrAlreadyConnected means the bot is already in the requested
	// voice channel.
	ErrAlreadyConnected = errors.New("already connected to that voice channel")

	// ErrNotConnected means the bot has no voice connection in the guild.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice means the requesting user is not in any voice
	// channel, so there is nothing to join.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")
)

// FindUserVoiceChannel returns the ID of the voice channel the user is
// currently in.
func FindUserVoiceChannel(s *discordgo.Session, guildID, userID string) (string, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("could not find guild: %v", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", ErrUserNotInVoice
}

// joinVoiceChannel joins a voice channel with retries and waits for the
// connection to become ready.
func joinVoiceChannel(s *discordgo.Session, guildID, channelID string) (*discordgo.VoiceConnection, error) {
	var vc *discordgo.VoiceConnection
	var err error

	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		vc, err = s.ChannelVoiceJoin(guildID, channelID, false, true)
		if err == nil {
			break
		}
		log.Printf("[Voice] join attempt %d/%d failed: %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel after %d attempts: %v", maxRetries, err)
	}

	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			vc.Disconnect()
			return nil, fmt.Errorf("voice connection timed out")
		case <-ticker.C:
			if vc.Ready {
				log.Printf("[Voice] connection ready in guild %s", guildID)
				return vc, nil
			}
		}
	}
}
