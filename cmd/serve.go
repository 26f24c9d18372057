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

	"github.com/tashasho/MCP-Server-BNV/database"
	"github.com/tashasho/MCP-Server-BNV/dealflow"
	"github.com/tashasho/MCP-Server-BNV/handlers"
)

const (
	serverShutdownWait = 10 * time.Second
	serverTimeout      = 60 * time.Second
	crawlTimeout       = 5 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the http api",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	catalog, err := loadCatalog(cfg.Scoring)
	if err != nil {
		return err
	}

	store, err := newStore(ctx, cfg.Affinity, db, log)
	if err != nil {
		return err
	}

	api := &handlers.API{
		Scorer:        newScorer(cfg.Scoring, catalog),
		Screening:     screeningOptions(cfg.Scoring),
		Store:         store,
		Crawler:       newCrawler(cfg.Crawler, catalog, log),
		Market:        newMarket(ctx, cfg.Market, log),
		DB:            db,
		Extractor:     dealflow.NewExtractor(catalog),
		DealCriteria:  dealCriteria(cfg),
		EnrichTimeout: cfg.Market.EnrichTimeout,
		CrawlTimeout:  crawlTimeout,
		Log:           log,
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(api, handlers.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitPerMin: cfg.Server.RateLimitPerMin,
	})

	s := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       serverTimeout,
		WriteTimeout:      serverTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info("server started",
		zap.String("address", s.Addr),
		zap.String("version", version),
		zap.Int("criteria", len(catalog.Criteria)),
		zap.Float64("criteria_weight_sum", catalog.WeightSum()),
	)
	if w := catalog.WeightSum(); w < 0.999 || w > 1.001 {
		log.Warn("criterion weights do not sum to 1", zap.Float64("sum", w))
	}
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWait)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("error shutting down server", zap.Error(err))
	}
	api.Wait()
	return nil
}
