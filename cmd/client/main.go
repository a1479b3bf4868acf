// A headless meeting participant: dials the signaling endpoint, joins a room
// and keeps peer links negotiated over real pion connections. Useful for soak
// and interop testing without a browser.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/khushal-Taskar/Zoom/internal/adapters/rtc"
	wssignal "github.com/khushal-Taskar/Zoom/internal/adapters/signal"
	"github.com/khushal-Taskar/Zoom/internal/domain"
	"github.com/khushal-Taskar/Zoom/internal/peer"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("client failed")
	}
}

func newRootCmd() *cobra.Command {
	var (
		serverURL string
		room      string
		name      string
		stun      []string
	)
	cmd := &cobra.Command{
		Use:           "client",
		Short:         "Headless meeting participant",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), serverURL, room, name, stun)
		},
	}
	cmd.Flags().StringVar(&serverURL, "url", "ws://localhost:8080/api/ws/signal", "signaling endpoint")
	cmd.Flags().StringVar(&room, "room", "", "room id to join")
	cmd.Flags().StringVar(&name, "name", "headless", "display name for chat")
	cmd.Flags().StringSliceVar(&stun, "stun", nil, "STUN server urls")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}

func run(ctx context.Context, serverURL, room, name string, stun []string) error {
	client, err := wssignal.Dial(ctx, serverURL)
	if err != nil {
		return err
	}
	defer client.Close()

	mgr := peer.NewSessionManager(name, client, rtc.Factory(rtc.DefaultConfig(stun)))
	defer mgr.Close()
	client.Bind(mgr)

	mgr.OnRemoteStream(func(id domain.ConnectionID, s peer.MediaStream) {
		log.Info().Str("module", "client").Str("remote", string(id)).
			Str("stream", s.ID()).Msg("remote stream")
	})
	mgr.OnPeerGone(func(id domain.ConnectionID) {
		log.Info().Str("module", "client").Str("remote", string(id)).Msg("peer gone")
	})

	if err := client.Join(domain.RoomID(room)); err != nil {
		return err
	}
	log.Info().Str("module", "client").Str("room", room).Msg("joined, relaying")

	// Run blocks in reads; closing the socket is what interrupts it.
	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	err = client.Run(ctx)
	if ctx.Err() != nil {
		log.Info().Str("module", "client").
			Str("self", string(mgr.Self())).Msg("session closed")
		return nil
	}
	return err
}
