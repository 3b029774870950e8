// Command datachat is a terminal chat client for a conversational data
// assistant.
//
// Usage:
//
//	datachat [flags]
//
// Flags:
//
//	-base-url string     Backend base URL (default: DATACHAT_BASE_URL or http://localhost:7860)
//	-session string      Path to session file to resume
//	-temperature float   Sampling temperature (default 0.7)
//	-max-tokens int      Generation limit (default 4096)
//	-log-file string     Path to debug log file (default: no logging)
//	-no-stream           Use the single-shot chat endpoint instead of streaming
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/zetacube/datachat"
	"github.com/zetacube/datachat/backend"
	bt "github.com/zetacube/datachat/bubbletea"
	"github.com/zetacube/datachat/faq"
	chatjson "github.com/zetacube/datachat/json"
	"github.com/zetacube/datachat/turn"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "datachat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		baseURL     = flag.String("base-url", defaultBaseURL(), "Backend base URL")
		sessionPath = flag.String("session", "", "Path to session file to resume")
		temperature = flag.Float64("temperature", 0.7, "Sampling temperature")
		maxTokens   = flag.Int("max-tokens", 4096, "Generation limit")
		logFile     = flag.String("log-file", "", "Path to debug log file")
		noStream    = flag.Bool("no-stream", false, "Use the single-shot chat endpoint instead of streaming")
	)
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// The terminal belongs to the TUI, so logs go to a file or nowhere.
	log, closeLog, err := newLogger(*logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	client := backend.New(*baseURL, backend.WithLogger(log))

	opts := []turn.Option{
		turn.WithFAQ(faq.Default()),
		turn.WithLogger(log),
		turn.WithTemperature(*temperature),
		turn.WithMaxTokens(*maxTokens),
	}
	if *noStream {
		opts = append(opts, turn.WithoutStreaming())
	}
	runner := turn.New(client, opts...)

	conv, err := loadOrCreateConversation(*sessionPath)
	if err != nil {
		return err
	}

	turnFn := func(ctx context.Context, c *datachat.Conversation, input string, onEvent func(datachat.Event)) (turn.Result, error) {
		return runner.Run(ctx, c, input, onEvent)
	}

	tuiModel := bt.New(turnFn, &conv, datachat.DefaultTheme())
	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	// Save session on exit.
	if *sessionPath != "" {
		if err := chatjson.Save(*sessionPath, conv); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	} else if len(conv.Messages) > 0 {
		// Auto-save to default location.
		savePath := defaultSessionPath(conv.ID)
		if err := chatjson.Save(savePath, conv); err != nil {
			return fmt.Errorf("auto-save session: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Session saved to %s\n", savePath)
	}

	return nil
}

func defaultBaseURL() string {
	if v := os.Getenv("DATACHAT_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:7860"
}

func newLogger(path string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("open log file: %w", err)
	}
	log := zerolog.New(f).With().Timestamp().Logger()
	return log, func() { f.Close() }, nil
}

func loadOrCreateConversation(sessionPath string) (datachat.Conversation, error) {
	if sessionPath != "" {
		if _, err := os.Stat(sessionPath); err == nil {
			c, err := chatjson.Load(sessionPath)
			if err != nil {
				return datachat.Conversation{}, fmt.Errorf("load session: %w", err)
			}
			return c, nil
		}
	}
	now := time.Now()
	return datachat.Conversation{
		ID:        fmt.Sprintf("%d", now.UnixNano()),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func defaultSessionPath(id string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".datachat", "sessions", id+".json")
}
