package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/snapshot"
	"github.com/spigell/job-recommender/internal/web"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the job recommendation web page",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	serveCmd.Flags().BoolP("rebuild", "r", false, "rebuild the snapshot from the source files before serving")

	viper.BindPFlag("web.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()

	logger.Info("starting the job-recommender", zap.String("version", version))

	if rebuild, _ := cmd.Flags().GetBool("rebuild"); rebuild {
		if err := buildSnapshot(config, logger); err != nil {
			logger.Fatal("rebuilding snapshot", zap.Error(err))
		}
	}

	matcher, err := newMatcher(config, logger)
	if err != nil {
		logger.Fatal("creating matcher", zap.Error(err))
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := web.NewRouter(web.Config{
		Snapshot: config.Snapshot,
		ApplyURL: config.Web.ApplyURL,
		Title:    config.Web.Title,
	}, web.Deps{
		Loader:  snapshot.NewLoader(logger.With(zap.String("component", "loader"))),
		Matcher: matcher,
		Logger:  logger.With(zap.String("component", "http")),
	})
	if err != nil {
		logger.Fatal("creating router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              config.Web.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", config.Web.Listen),
			zap.String("snapshot", config.Snapshot),
			zap.Int("top_n", matcher.TopN()),
			zap.String("cap_mode", string(matcher.CapMode())),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serving http", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
