package mediatool

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// stderrTail is how much of a failed tool's stderr is kept on the error
const stderrTail = 4000

// Run executes tool with args and blocks until it exits
func Run(ctx context.Context, tool string, args ...string) error {
	return run(ctx, tool, args)
}

func run(ctx context.Context, tool string, args []string) error {
	log.Debug().Str("tool", tool).Str("args", strings.Join(args, " ")).Msg("[exec] running")

	cmd := exec.CommandContext(ctx, tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	return &ExternalToolError{
		Tool:     tool,
		Args:     args,
		ExitCode: code,
		Stderr:   tail(stderr.String(), stderrTail),
		Err:      err,
	}
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
