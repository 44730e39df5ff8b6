package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/mediatool"
	"story-shorts-pipeline/types"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Uploader handles YouTube video upload via Data API v3
type Uploader struct {
	cfg  *config.Config
	opts []option.ClientOption // overrides the env credentials when set
}

// New creates a new Uploader
func New(cfg *config.Config, opts ...option.ClientOption) *Uploader {
	return &Uploader{cfg: cfg, opts: opts}
}

func (u *Uploader) service(ctx context.Context) (*youtube.Service, error) {
	opts := u.opts
	if len(opts) == 0 {
		ts, err := tokenSource(ctx)
		if err != nil {
			return nil, err
		}
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return svc, nil
}

// VerifyAuth checks the credentials resolve to a channel before any
// expensive work is done
func (u *Uploader) VerifyAuth(ctx context.Context) error {
	svc, err := u.service(ctx)
	if err != nil {
		return err
	}
	resp, err := svc.Channels.List([]string{"id"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return &mediatool.ExternalToolError{Tool: "youtube", Args: []string{"channels.list"}, ExitCode: -1, Err: err}
	}
	if len(resp.Items) == 0 {
		return &mediatool.ExternalToolError{Tool: "youtube", Args: []string{"channels.list"}, ExitCode: -1, Stderr: "no channel for these credentials"}
	}
	log.Info().Str("channel", resp.Items[0].Id).Msg("[upload] ✅ YouTube auth verified")
	return nil
}

// Run uploads the final video to YouTube with all metadata
func (u *Uploader) Run(ctx context.Context, videoFile string, md *types.VideoMetadata) (string, string, error) {
	log.Info().Msg("[upload] Authenticating with YouTube API...")
	svc, err := u.service(ctx)
	if err != nil {
		return "", "", err
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Info().Str("title", md.Title).Float64("mb", float64(fi.Size())/1024/1024).Msg("[upload] Uploading")
	}

	video := buildVideo(md, u.cfg.Upload)
	if video.Status.PublishAt != "" {
		log.Info().Str("publish_at", video.Status.PublishAt).Msg("[upload] Scheduled")
	}

	uploaded, err := svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f).Context(ctx).Do()
	if err != nil {
		return "", "", &mediatool.ExternalToolError{Tool: "youtube", Args: []string{"videos.insert", videoFile}, ExitCode: -1, Err: err}
	}

	videoURL := "https://www.youtube.com/watch?v=" + uploaded.Id
	log.Info().Str("id", uploaded.Id).Str("url", videoURL).Msg("[upload] ✅ Uploaded successfully")
	return uploaded.Id, videoURL, nil
}

func buildVideo(md *types.VideoMetadata, cfg config.UploadConfig) *youtube.Video {
	status := &youtube.VideoStatus{
		PrivacyStatus:           md.Visibility,
		SelfDeclaredMadeForKids: cfg.MadeForKids,
		NotifySubscribers:       cfg.NotifySubscribers,
		ForceSendFields:         []string{"SelfDeclaredMadeForKids", "NotifySubscribers"},
	}
	// a publish time is only honoured on private videos
	if md.ScheduledTimeUTC != "" && md.Visibility == "public" {
		status.PrivacyStatus = "private"
		status.PublishAt = md.ScheduledTimeUTC
	}
	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                md.Title,
			Description:          md.Description,
			Tags:                 md.Tags,
			CategoryId:           md.CategoryID,
			DefaultLanguage:      md.Language,
			DefaultAudioLanguage: md.Language,
		},
		Status: status,
	}
}

// tokenSource builds a refreshing token source from env credentials
func tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}
	return conf.TokenSource(ctx, token), nil
}

// LogUpload saves the upload result to the logs directory
func LogUpload(videoID, videoURL, videoFile, logsDir string, md *types.VideoMetadata, now time.Time) (string, error) {
	entry := map[string]interface{}{
		"video_id":      videoID,
		"video_url":     videoURL,
		"title":         md.Title,
		"scheduled_utc": md.ScheduledTimeUTC,
		"uploaded_at":   now.UTC().Format(time.RFC3339),
		"video_file":    videoFile,
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", err
	}
	logFile := filepath.Join(logsDir, fmt.Sprintf("upload_%s.json", now.Format("20060102_150405")))
	data, _ := json.MarshalIndent(entry, "", "  ")
	if err := os.WriteFile(logFile, data, 0644); err != nil {
		return "", err
	}
	log.Info().Str("file", logFile).Msg("[upload] Upload log saved")
	return logFile, nil
}
