package audio

import (
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"

	"github.com/latoulicious/Minuet/pkg/player"
)

const (
	sampleRate = 48000
	channels   = 2
	frameSize  = 960                      // 20ms at 48kHz
	frameBytes = frameSize * channels * 2 // s16le
	pcmSamples = frameSize * channels
)

// Pipeline implements player.Pipeline on top of an ffmpeg subprocess,
// Opus encoding and a Discord voice connection. One pipeline serves one
// guild; the voice connection is joined lazily on the first start and
// reused while the target channel stays the same.
type Pipeline struct {
	dg      *discordgo.Session
	guildID string

	mu        sync.Mutex
	channelID string
	vc        *discordgo.VoiceConnection
}

// NewPipeline creates the pipeline for a guild.
func NewPipeline(dg *discordgo.Session, guildID string) *Pipeline {
	return &Pipeline{dg: dg, guildID: guildID}
}

// SetChannel records which voice channel the next start should stream
// into.
func (p *Pipeline) SetChannel(channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channelID = channelID
}

// ChannelID returns the current target voice channel, empty if none.
func (p *Pipeline) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

// Connected reports whether the bot holds a live voice connection.
func (p *Pipeline) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vc != nil
}

// Disconnect leaves the voice channel, if connected.
func (p *Pipeline) Disconnect() error {
	p.mu.Lock()
	vc := p.vc
	p.vc = nil
	p.channelID = ""
	p.mu.Unlock()

	if vc == nil {
		return ErrNotConnected
	}
	return vc.Disconnect()
}

// Start implements player.Pipeline. It ensures the voice connection,
// spawns ffmpeg for the track's stream URL and launches the send loop.
func (p *Pipeline) Start(t player.Track) (player.Handle, error) {
	vc, err := p.ensureVoice()
	if err != nil {
		return nil, err
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus encoder: %v", err)
	}
	encoder.SetBitrate(128000)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", t.URL,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprint(sampleRate),
		"-ac", fmt.Sprint(channels),
		"-bufsize", "64k",
		"-")

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stderr pipe: %v", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %v", err)
	}

	log.Printf("[Audio %s] starting ffmpeg for %q", p.guildID, t.Title)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start ffmpeg: %v", err)
	}

	st := &stream{
		ctx:     ctx,
		cancel:  cancel,
		cmd:     cmd,
		vc:      vc,
		encoder: encoder,
		done:    make(chan error, 1),
		resume:  make(chan struct{}),
	}
	go consumeStderr(stderr)
	go st.run(stdout)

	return st, nil
}

// Connect joins the configured voice channel without starting a stream.
// Returns ErrAlreadyConnected when the bot is already in that channel.
func (p *Pipeline) Connect() error {
	p.mu.Lock()
	channelID := p.channelID
	vc := p.vc
	p.mu.Unlock()

	if vc != nil && vc.ChannelID == channelID {
		return ErrAlreadyConnected
	}
	_, err := p.ensureVoice()
	return err
}

// ensureVoice joins (or reuses) the voice connection for the configured
// channel.
func (p *Pipeline) ensureVoice() (*discordgo.VoiceConnection, error) {
	p.mu.Lock()
	channelID := p.channelID
	vc := p.vc
	p.mu.Unlock()

	if channelID == "" {
		return nil, ErrNotConnected
	}
	if vc != nil && vc.ChannelID == channelID {
		return vc, nil
	}

	joined, err := joinVoiceChannel(p.dg, p.guildID, channelID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.vc = joined
	p.mu.Unlock()
	return joined, nil
}

// stream is one live ffmpeg invocation. It satisfies player.Handle.
// Exactly one value is delivered on done when the send loop exits, so a
// waiting session never blocks forever; stale deliveries are discarded
// by the session's epoch check.
type stream struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cmd     *exec.Cmd
	vc      *discordgo.VoiceConnection
	encoder *gopus.Encoder

	mu     sync.Mutex
	paused bool
	resume chan struct{}

	done     chan error
	doneOnce sync.Once
	stopOnce sync.Once
}

func (s *stream) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
	})
}

func (s *stream) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return nil
	}
	s.paused = true
	s.resume = make(chan struct{})
	return nil
}

func (s *stream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return nil
	}
	s.paused = false
	close(s.resume)
	return nil
}

func (s *stream) Done() <-chan error {
	return s.done
}

// finish delivers the stream's single completion value.
func (s *stream) finish(err error) {
	s.doneOnce.Do(func() {
		s.done <- err
	})
}

// run reads PCM from ffmpeg, encodes it and feeds the voice connection
// until EOF, error or cancellation.
func (s *stream) run(pcm io.Reader) {
	defer func() {
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
		s.vc.Speaking(false)
	}()

	s.vc.Speaking(true)

	buffer := make([]byte, frameBytes)
	frames := 0

	for {
		select {
		case <-s.ctx.Done():
			s.finish(nil)
			return
		default:
		}

		// Block here while paused; ffmpeg keeps its buffer, Discord
		// just stops receiving frames.
		s.mu.Lock()
		paused := s.paused
		resume := s.resume
		s.mu.Unlock()
		if paused {
			select {
			case <-resume:
			case <-s.ctx.Done():
				s.finish(nil)
				return
			}
			continue
		}

		n, err := io.ReadFull(pcm, buffer)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				log.Printf("[Audio] stream ended after %d frames", frames)
				s.finish(nil)
			} else {
				s.finish(fmt.Errorf("error reading PCM data: %v", err))
			}
			return
		}

		samples := bytesToInt16(buffer[:n])
		if len(samples) != pcmSamples {
			padded := make([]int16, pcmSamples)
			copy(padded, samples)
			samples = padded
		}

		opusData, err := s.encoder.Encode(samples, frameSize, frameBytes)
		if err != nil {
			log.Printf("[Audio] opus encoding error: %v", err)
			continue
		}

		select {
		case s.vc.OpusSend <- opusData:
			frames++
		case <-time.After(2 * time.Second):
			s.finish(fmt.Errorf("voice send timed out"))
			return
		case <-s.ctx.Done():
			s.finish(nil)
			return
		}
	}
}

func consumeStderr(stderr io.ReadCloser) {
	defer stderr.Close()
	buffer := make([]byte, 1024)
	for {
		if _, err := stderr.Read(buffer); err != nil {
			return
		}
	}
}

func bytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := 0; i < len(samples); i++ {
		samples[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
	}
	return samples
}
