package resolver

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/latoulicious/Minuet/pkg/player"
)

// cacheTTL bounds how long a resolved stream URL is trusted. YouTube
// signs stream URLs with an expiry of a few hours.
const cacheTTL = 2 * time.Hour

// YouTube resolves URLs and search queries into playable tracks. Direct
// links go through the YouTube client; free-text queries go through a
// yt-dlp search subprocess first. Resolved metadata is cached when a
// cache is attached.
type YouTube struct {
	client youtube.Client
	cache  *TrackCache // nil disables caching
}

// NewYouTube creates a resolver. cache may be nil.
func NewYouTube(cache *TrackCache) *YouTube {
	return &YouTube{cache: cache}
}

// Resolve implements Resolver.
func (y *YouTube) Resolve(ctx context.Context, input, requestedBy string) (player.Track, error) {
	input = strings.TrimSpace(input)
	if IsURL(input) {
		return y.resolveURL(ctx, input, requestedBy)
	}
	return y.resolveSearch(ctx, input, requestedBy)
}

// resolveURL resolves a direct video link.
func (y *YouTube) resolveURL(ctx context.Context, videoURL, requestedBy string) (player.Track, error) {
	if IsUnsupportedURL(videoURL) {
		return player.Track{}, fmt.Errorf("%w: %w", player.ErrResolutionFailed, ErrUnsupportedSource)
	}

	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		return player.Track{}, fmt.Errorf("%w: not a recognizable video link", player.ErrResolutionFailed)
	}

	if y.cache != nil {
		if t, ok := y.cache.Get(videoID); ok {
			log.Printf("[Resolver] cache hit for %s (%q)", videoID, t.Title)
			t.RequestedBy = requestedBy
			t.AddedAt = time.Now()
			return t, nil
		}
	}

	video, err := y.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return player.Track{}, fmt.Errorf("%w: %v", player.ErrResolutionFailed, err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return player.Track{}, fmt.Errorf("%w: no audio formats for %s", player.ErrResolutionFailed, videoID)
	}

	streamURL, err := y.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return player.Track{}, fmt.Errorf("%w: %v", player.ErrResolutionFailed, err)
	}

	t := player.Track{
		ID:          videoID,
		Title:       video.Title,
		URL:         streamURL,
		SourceURL:   videoURL,
		Duration:    video.Duration,
		RequestedBy: requestedBy,
		AddedAt:     time.Now(),
	}

	if y.cache != nil {
		if err := y.cache.Put(t, cacheTTL); err != nil {
			log.Printf("[Resolver] failed to cache %s: %v", videoID, err)
		}
	}
	return t, nil
}

// resolveSearch finds the first matching video for a query via yt-dlp
// and resolves its URL.
func (y *YouTube) resolveSearch(ctx context.Context, query, requestedBy string) (player.Track, error) {
	log.Printf("[Resolver] searching for %q", query)

	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--no-playlist",
		"--no-warnings",
		"--print", "webpage_url",
		"ytsearch1:"+query)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	resultURL := firstLine(out.String())
	if resultURL == "" {
		if runErr != nil {
			log.Printf("[Resolver] search failed: %v, stderr: %s", runErr, stderr.String())
			return player.Track{}, fmt.Errorf("%w: search failed: %v", player.ErrResolutionFailed, runErr)
		}
		return player.Track{}, fmt.Errorf("%w: %w", player.ErrResolutionFailed, ErrNoResults)
	}

	return y.resolveURL(ctx, resultURL, requestedBy)
}

func firstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[0])
}

// IsURL checks if a string looks like a link rather than a search query.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "www.")
}

// IsYouTubeURL checks if a URL appears to be from YouTube.
func IsYouTubeURL(s string) bool {
	return strings.Contains(s, "youtube.com") || strings.Contains(s, "youtu.be")
}

// IsUnsupportedURL rejects playlist and Shorts links. Playing them would
// need playlist expansion, which the bot does not do.
func IsUnsupportedURL(s string) bool {
	if strings.Contains(s, "/playlist") || strings.Contains(s, "/shorts/") {
		return true
	}
	if u, err := url.Parse(s); err == nil {
		if u.Query().Get("list") != "" {
			return true
		}
	}
	return false
}

var videoIDPattern = regexp.MustCompile(`[a-zA-Z0-9_-]{11}`)

// ExtractVideoID pulls the 11-character video ID out of the common
// YouTube URL shapes.
func ExtractVideoID(videoURL string) string {
	if strings.Contains(videoURL, "youtube.com") {
		parsed, err := url.Parse(videoURL)
		if err != nil {
			return ""
		}
		if id := parsed.Query().Get("v"); id != "" {
			return id
		}
		if strings.Contains(parsed.Path, "/embed/") {
			parts := strings.Split(parsed.Path, "/embed/")
			if len(parts) > 1 {
				return strings.Split(parts[1], "?")[0]
			}
		}
		return ""
	}

	if strings.Contains(videoURL, "youtu.be") {
		parsed, err := url.Parse(videoURL)
		if err != nil {
			return ""
		}
		id := strings.TrimPrefix(parsed.Path, "/")
		return strings.Split(id, "?")[0]
	}

	// Fallback for bare IDs pasted directly.
	if match := videoIDPattern.FindString(videoURL); match == videoURL {
		return match
	}
	return ""
}
