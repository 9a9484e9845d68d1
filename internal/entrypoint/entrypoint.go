package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/biblioteca/internal/config"
	"github.com/mrlokans/biblioteca/internal/database"
	"github.com/mrlokans/biblioteca/internal/database/authors"
	"github.com/mrlokans/biblioteca/internal/database/books"
	"github.com/mrlokans/biblioteca/internal/database/loans"
	"github.com/mrlokans/biblioteca/internal/database/reports"
	"github.com/mrlokans/biblioteca/internal/events"
	http_controllers "github.com/mrlokans/biblioteca/internal/http"
)

// Registries bundles the wired circulation core, for the server and for
// the seed command.
type Registries struct {
	Gateway *database.Gateway
	Hub     *events.Hub
	Authors *authors.Repository
	Books   *books.Repository
	Loans   *loans.Repository
	Reports *reports.Repository
}

// Build opens the database and wires gateway, hub and repositories. The
// book catalog subscribes to loan transitions so its available-books
// picker tracks the ledger.
func Build(cfg *config.Config) (*Registries, error) {
	gw, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	hub := events.NewHub()

	authorsRepo := authors.NewRepository(gw, hub)
	booksRepo := books.NewRepository(gw, hub)
	loansRepo := loans.NewRepository(gw, hub, booksRepo)
	reportsRepo := reports.NewRepository(gw)

	hub.Subscribe(events.LoanOpened, booksRepo.Refresh)
	hub.Subscribe(events.LoanClosed, booksRepo.Refresh)

	return &Registries{
		Gateway: gw,
		Hub:     hub,
		Authors: authorsRepo,
		Books:   booksRepo,
		Loans:   loansRepo,
		Reports: reportsRepo,
	}, nil
}

// Run wires the core, mounts the HTTP API and serves until interrupted.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting biblioteca v%s", version)

	registries, err := Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build registries: %v", err)
	}
	defer registries.Gateway.Close()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Authors: http_controllers.NewAuthorsController(registries.Authors),
		Books:   http_controllers.NewBooksController(registries.Books),
		Loans:   http_controllers.NewLoansController(registries.Loans),
		Reports: http_controllers.NewReportsController(registries.Reports, cfg.Reports.OverdueDays, cfg.Reports.MostBorrowedSize),
		Health:  http_controllers.NewHealthController(registries.Gateway, version),
	})

	Serve(router, cfg)
}

// Serve runs the HTTP server with the usual graceful shutdown dance.
func Serve(router *gin.Engine, cfg *config.Config) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}
