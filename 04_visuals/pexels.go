package visuals

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/mediatool"
)

const pexelsSearchURL = "https://api.pexels.com/videos/search"

// PexelsClient searches Pexels for portrait stock video
type PexelsClient struct {
	cfg        *config.Config
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewPexelsClient creates a client; searches share one rate limiter
func NewPexelsClient(cfg *config.Config, apiKey string) *PexelsClient {
	rpm := cfg.Visuals.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	return &PexelsClient{
		cfg:        cfg,
		apiKey:     apiKey,
		baseURL:    pexelsSearchURL,
		httpClient: &http.Client{Timeout: 180 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

type pexelsResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID         int          `json:"id"`
	Duration   float64      `json:"duration"`
	VideoFiles []pexelsFile `json:"video_files"`
}

type pexelsFile struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size"`
	Link     string `json:"link"`
}

// Fetch downloads a background clip to outFile. Each attempt searches a
// random query (avoiding recent ones when possible), shuffles the results and
// tries the best-ranked renditions of the first ten videos. It returns the
// query that produced the clip.
func (p *PexelsClient) Fetch(ctx context.Context, rng *rand.Rand, recentQueries []string, outFile string) (string, error) {
	vc := p.cfg.Visuals
	if p.apiKey == "" {
		return "", fmt.Errorf("PEXELS_API_KEY is not set")
	}
	queries := preferFresh(vc.PexelsQueries, recentQueries)
	if len(queries) == 0 {
		return "", fmt.Errorf("no pexels queries configured")
	}

	var lastErr error
	for attempt := 1; attempt <= vc.PexelsAttempts; attempt++ {
		q := queries[rng.Intn(len(queries))]
		log.Info().Int("attempt", attempt).Str("query", q).Msg("[visuals] Pexels search")

		videos, err := p.search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			log.Warn().Err(err).Msg("[visuals] ⚠️  search failed")
			continue
		}
		rng.Shuffle(len(videos), func(i, j int) { videos[i], videos[j] = videos[j], videos[i] })
		if len(videos) > 10 {
			videos = videos[:10]
		}

		for _, v := range videos {
			cands := rankFiles(v.VideoFiles, vc.PexelsMinHeight, vc.PexelsTargetBytes)
			if len(cands) > 3 {
				cands = cands[:3]
			}
			for _, f := range cands {
				if err := p.tryFile(ctx, f, outFile); err != nil {
					lastErr = err
					log.Warn().Err(err).Int("w", f.Width).Int("h", f.Height).Msg("[visuals] ⚠️  candidate rejected")
					continue
				}
				return q, nil
			}
		}
		log.Warn().Int("attempt", attempt).Msg("[visuals] ⚠️  no valid background this attempt")
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no portrait candidates")
	}
	return "", &mediatool.ExternalToolError{
		Tool: "pexels",
		Err:  fmt.Errorf("no valid background after %d attempts: %w", vc.PexelsAttempts, lastErr),
	}
}

func (p *PexelsClient) search(ctx context.Context, query string) ([]pexelsVideo, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "portrait")
	params.Set("per_page", strconv.Itoa(p.cfg.Visuals.PexelsPerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from Pexels", resp.StatusCode)
	}

	var out pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode pexels response: %w", err)
	}
	return out.Videos, nil
}

// tryFile downloads one rendition and rejects it when it is too small or
// too short
func (p *PexelsClient) tryFile(ctx context.Context, f pexelsFile, outFile string) error {
	vc := p.cfg.Visuals
	_ = os.Remove(outFile)
	if err := download(ctx, p.httpClient, f.Link, outFile); err != nil {
		return err
	}
	info, err := os.Stat(outFile)
	if err != nil {
		return err
	}
	if info.Size() < vc.PexelsMinBytes {
		return fmt.Errorf("background too small (%d bytes)", info.Size())
	}
	dur, err := mediatool.ProbeDuration(outFile)
	if err != nil {
		return err
	}
	if dur < vc.PexelsMinDurationSec {
		return fmt.Errorf("background too short (%.1fs)", dur)
	}
	log.Info().Str("file", outFile).Float64("sec", dur).Msg("[visuals] ✅ Pexels background ready")
	return nil
}

// rankFiles keeps portrait renditions at least minHeight tall and orders
// them by closeness to 9:16, then by closeness of file size to targetBytes.
// Renditions with an unknown size sort first among equal aspect ratios.
func rankFiles(files []pexelsFile, minHeight int, targetBytes int64) []pexelsFile {
	type cand struct {
		f      pexelsFile
		aspect float64
		size   float64
	}
	var cands []cand
	for _, f := range files {
		if f.Link == "" || f.Height <= f.Width || f.Height < minHeight {
			continue
		}
		c := cand{f: f, aspect: math.Abs(float64(f.Width)/float64(f.Height) - 9.0/16.0)}
		if f.FileSize > 0 {
			c.size = math.Abs(float64(f.FileSize - targetBytes))
		}
		cands = append(cands, c)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].aspect != cands[j].aspect {
			return cands[i].aspect < cands[j].aspect
		}
		return cands[i].size < cands[j].size
	})
	out := make([]pexelsFile, len(cands))
	for i, c := range cands {
		out[i] = c.f
	}
	return out
}

// download streams url into outFile
func download(ctx context.Context, client *http.Client, fileURL, outFile string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; StoryShortsPipeline/1.0)")

	resp, err := client.Do(req)
	if err != nil {
		return &mediatool.ExternalToolError{Tool: "download", Args: []string{fileURL}, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &mediatool.ExternalToolError{Tool: "download", Args: []string{fileURL}, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return &mediatool.ExternalToolError{Tool: "download", Args: []string{fileURL}, Err: err}
	}
	return f.Close()
}

// preferFresh drops recently used entries unless that would leave nothing
func preferFresh(all, recent []string) []string {
	used := make(map[string]bool, len(recent))
	for _, r := range recent {
		used[r] = true
	}
	var fresh []string
	for _, a := range all {
		if !used[a] {
			fresh = append(fresh, a)
		}
	}
	if len(fresh) == 0 {
		return all
	}
	return fresh
}
