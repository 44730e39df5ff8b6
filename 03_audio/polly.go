package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/polly"
	"github.com/aws/aws-sdk-go/service/polly/pollyiface"

	"story-shorts-pipeline/config"
	"story-shorts-pipeline/mediatool"
)

// PollySynthesizer uses Amazon Polly. Credentials come from the usual AWS_*
// environment variables or shared config.
type PollySynthesizer struct {
	svc        pollyiface.PollyAPI
	engine     string
	sampleRate int
}

// NewPollySynthesizer opens an AWS session in the configured region
func NewPollySynthesizer(cfg *config.Config) (*PollySynthesizer, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Audio.PollyRegion),
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return &PollySynthesizer{
		svc:        polly.New(sess),
		engine:     cfg.Audio.PollyEngine,
		sampleRate: cfg.Audio.SampleRate,
	}, nil
}

func (p *PollySynthesizer) Ext() string { return ".mp3" }

// Synthesize writes an MP3 spoken by the Polly voice id
func (p *PollySynthesizer) Synthesize(ctx context.Context, text, voice, outFile string) error {
	input := &polly.SynthesizeSpeechInput{
		Engine:       aws.String(p.engine),
		OutputFormat: aws.String(polly.OutputFormatMp3),
		Text:         aws.String(text),
		VoiceId:      aws.String(voice),
	}
	if p.sampleRate > 0 {
		input.SampleRate = aws.String(strconv.Itoa(p.sampleRate))
	}

	out, err := p.svc.SynthesizeSpeechWithContext(ctx, input)
	if err != nil {
		return &mediatool.ExternalToolError{Tool: "polly", Err: err}
	}
	defer out.AudioStream.Close()

	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("create %s: %w", outFile, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.AudioStream); err != nil {
		return &mediatool.ExternalToolError{Tool: "polly", Err: fmt.Errorf("save audio stream: %w", err)}
	}
	return nil
}
