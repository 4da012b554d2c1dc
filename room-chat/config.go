package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envBindings maps flag names to the environment variables that fill them
// when the flag is not given on the command line.
var envBindings = map[string]string{
	"transport-url": "ROOM_CHAT_TRANSPORT_URL",
	"log-level":     "ROOM_CHAT_LOG_LEVEL",
	"icon":          "ROOM_CHAT_ICON",
	"server-url":    "RELAY",
	"port":          "ROOM_CHAT_PORT",
	"name":          "ROOM_CHAT_NAME",
	"cred-key":      "ROOM_CHAT_CRED_KEY",
	"nickname":      "ROOM_CHAT_NICKNAME",
	"log-file":      "ROOM_CHAT_LOG_FILE",
}

// loadConfig reads .env, applies environment overrides and sets up logging.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := bindEnv(cmd.Flags(), os.LookupEnv); err != nil {
		return err
	}
	return setupLogging(flagLogLevel)
}

// bindEnv sets every unchanged flag that has a non-empty environment value.
func bindEnv(flags *pflag.FlagSet, lookup func(string) (string, bool)) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}
		key, ok := envBindings[f.Name]
		if !ok {
			return
		}
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if setErr := flags.Set(f.Name, v); setErr != nil {
			err = fmt.Errorf("env %s: %w", key, setErr)
		}
	})
	return err
}

func setupLogging(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// redirectLog points the global logger at path, or discards output when path
// is empty. The terminal UI owns stdout/stderr while it runs.
func redirectLog(path string) (io.Closer, error) {
	if path == "" {
		log.Logger = zerolog.New(io.Discard)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f, nil
}
