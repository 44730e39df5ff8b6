package visuals

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"story-shorts-pipeline/mediatool"
)

const pollinationsURL = "https://image.pollinations.ai/prompt/"

// PollinationsFetcher generates stills via Pollinations.ai (free, no key needed)
type PollinationsFetcher struct {
	baseURL    string
	model      string
	attempts   int
	backoff    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewPollinationsFetcher creates a new fetcher
func NewPollinationsFetcher(model string, attempts, requestsPerMinute int) *PollinationsFetcher {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &PollinationsFetcher{
		baseURL:    pollinationsURL,
		model:      model,
		attempts:   attempts,
		backoff:    3 * time.Second,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

// ImageURL is the request for one generated still
func (p *PollinationsFetcher) ImageURL(prompt string, width, height int, seed int64) string {
	q := url.Values{}
	q.Set("width", fmt.Sprint(width))
	q.Set("height", fmt.Sprint(height))
	q.Set("nologo", "true")
	q.Set("model", p.model)
	q.Set("seed", fmt.Sprint(seed))
	return p.baseURL + url.PathEscape(prompt) + "?" + q.Encode()
}

// Fetch generates a still for prompt and saves it to outFile
func (p *PollinationsFetcher) Fetch(ctx context.Context, prompt string, width, height int, seed int64, outFile string) error {
	imageURL := p.ImageURL(prompt, width, height, seed)
	log.Info().Str("prompt", truncate(prompt, 60)).Msg("[visuals] Generating still...")

	attempts := max(p.attempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		if err = p.downloadImage(ctx, imageURL, outFile); err == nil {
			log.Info().Str("file", outFile).Msg("[visuals] ✅ Still saved")
			return nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("[visuals] ⚠️  Pollinations attempt failed")
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * p.backoff):
			}
		}
	}
	return fmt.Errorf("pollinations fetch failed after %d attempts: %w", attempts, err)
}

func (p *PollinationsFetcher) downloadImage(ctx context.Context, imageURL, outFile string) error {
	if err := download(ctx, p.httpClient, imageURL, outFile); err != nil {
		return err
	}
	info, err := os.Stat(outFile)
	if err != nil {
		return err
	}
	// error pages come back tiny
	if info.Size() < 100 {
		return &mediatool.ExternalToolError{Tool: "download", Args: []string{imageURL}, Err: fmt.Errorf("response too small (%d bytes)", info.Size())}
	}
	return nil
}

// StillPrompt dresses a story theme up as a calm landscape prompt
func StillPrompt(theme string) string {
	return fmt.Sprintf("%s, calm cinematic landscape, soft night lighting, dreamy atmosphere, wide shot, no text, no watermark, no people", theme)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
