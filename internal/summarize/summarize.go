// Package summarize produces the short completion summary spoken over
// TTS, invoking a local small-model subprocess.
package summarize

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/kahgeh/harold/internal/subprocess"
)

// FallbackSummary is used whenever the subprocess fails or times out.
const FallbackSummary = "Work complete"

var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Summarizer invokes a local small model to produce a 3-8 word completion
// summary from the assistant's final message.
type Summarizer struct {
	ModelDir string
	Timeout  time.Duration
}

func New(modelDir string, timeout time.Duration) *Summarizer {
	return &Summarizer{ModelDir: modelDir, Timeout: timeout}
}

// Summarize returns a short summary of assistantMessage, falling back to
// FallbackSummary on any subprocess error.
func (s *Summarizer) Summarize(ctx context.Context, assistantMessage string) string {
	res, err := subprocess.RunWithInput(ctx, s.Timeout, "harold-summarize",
		[]string{"--model-dir", s.ModelDir}, nil, assistantMessage)
	if err != nil {
		return FallbackSummary
	}

	out := thinkBlockRe.ReplaceAllString(res.Stdout, "")
	out = strings.TrimSpace(out)
	if out == "" {
		return FallbackSummary
	}
	return out
}
