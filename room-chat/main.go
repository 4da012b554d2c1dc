package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/room-chat/chatview"
)

var rootCmd = &cobra.Command{
	Use:               "room-chat",
	Short:             "Room chat client (browser UI over the room service websocket)",
	PersistentPreRunE: loadConfig,
	RunE:              runWeb,
}

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Room chat in the terminal",
	RunE:  runTerm,
}

var (
	flagTransportURL string
	flagLogLevel     string
	flagIcon         string

	flagServerURLs []string
	flagPort       int
	flagName       string
	flagCredKey    string

	flagNickname string
	flagLogFile  string
)

func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flagTransportURL, "transport-url", "ws://127.0.0.1:8080/ws", "room service websocket URL (env ROOM_CHAT_TRANSPORT_URL)")
	persistent.StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	persistent.StringVar(&flagIcon, "icon", "", "optional avatar URL sent with created/joined rooms")

	flags := rootCmd.Flags()
	flags.StringSliceVar(&flagServerURLs, "server-url", nil, "relayserver base URL(s); repeat or comma-separated (env RELAY)")
	flags.IntVar(&flagPort, "port", 8092, "local HTTP port (negative to disable)")
	flags.StringVar(&flagName, "name", "room-chat", "backend display name")
	flags.StringVar(&flagCredKey, "cred-key", "", "optional credential key to use for the relay listener (base64 encoded)")

	tflags := termCmd.Flags()
	tflags.StringVar(&flagNickname, "nickname", "", "initial nickname")
	tflags.StringVar(&flagLogFile, "log-file", "", "write logs to this file while the terminal UI runs")

	rootCmd.AddCommand(termCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execute room-chat command")
	}
}

func runWeb(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	urls := relayURLs(flagServerURLs)
	if len(urls) == 0 && flagPort < 0 {
		return errors.New("nothing to serve: set --server-url (env RELAY) or a non-negative --port")
	}

	sessions := newSessionSet()
	handler := NewHandler(flagName, chatview.WebsocketDialer(flagTransportURL), sessions, chatview.Session{UserIcon: sanitizeAvatar(flagIcon)})

	relays, err := listenRelays(urls, flagCredKey, flagName)
	if err != nil {
		return err
	}
	for i, ln := range relays.listeners {
		idx := i
		go func() {
			if err := http.Serve(ln, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
				log.Error().Err(err).Int("listener", idx).Msg("[room-chat] relay http error")
			}
		}()
	}

	var httpSrv *http.Server
	if flagPort >= 0 {
		httpSrv = &http.Server{Addr: fmt.Sprintf(":%d", flagPort), Handler: handler, ReadHeaderTimeout: 5 * time.Second, IdleTimeout: 60 * time.Second}
		log.Info().Str("transport", flagTransportURL).Msgf("[room-chat] serving locally at http://127.0.0.1:%d", flagPort)
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn().Err(err).Msg("[room-chat] local http stopped")
				stop()
			}
		}()
	}

	// Unified shutdown watcher
	go func() {
		<-ctx.Done()
		relays.close()
		if httpSrv != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(sctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("[room-chat] http server shutdown error")
			}
		}
	}()

	<-ctx.Done()
	log.Info().Int("sessions", sessions.count()).Msg("[room-chat] closing browser sessions")
	sessions.closeAll()
	sessions.wait()
	log.Info().Msg("[room-chat] shutdown complete")
	return nil
}

func runTerm(cmd *cobra.Command, args []string) error {
	closer, err := redirectLog(flagLogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runTermUI(ctx, chatview.WebsocketDialer(flagTransportURL), chatview.Session{
		Nickname: flagNickname,
		UserIcon: sanitizeAvatar(flagIcon),
	})
}
