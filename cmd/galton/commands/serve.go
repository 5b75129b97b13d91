package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xtding233/galton-board/internal/profile"
	"github.com/xtding233/galton-board/internal/server"
)

var (
	serveAddr     string
	serveGRPCAddr string
	serveWatch    time.Duration
	serveMaxBalls int
	serveMaxSlots int
	serveStore    storeFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve simulations over HTTP and gRPC",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrinter(cmd)
		store, err := serveStore.open(p)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var profiles []string
		if profileName != "" {
			profiles = append(profiles, profileName)
		}
		err = server.ListenAndServe(ctx, server.ServeConfig{
			Addr:     serveAddr,
			GRPCAddr: serveGRPCAddr,
			Loader:   profile.NewLoader(configDir),
			Profiles: profiles,
			Watch:    serveWatch,
			Options:  server.Options{MaxBalls: serveMaxBalls, MaxSlots: serveMaxSlots, History: store},
		})
		if err != nil {
			return p.Error("Server stopped", err.Error(), nil)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "", "gRPC listen address (disabled when empty)")
	serveCmd.Flags().DurationVar(&serveWatch, "watch", 2*time.Second, "config reload poll interval, 0 disables")
	serveCmd.Flags().IntVar(&serveMaxBalls, "max-balls", server.DefaultMaxBalls, "largest ball count a request may ask for")
	serveCmd.Flags().IntVar(&serveMaxSlots, "max-slots", server.DefaultMaxSlots, "widest board a request may ask for")
	serveStore.register(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}
