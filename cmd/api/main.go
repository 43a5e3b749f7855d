package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/stubdesk/backoffice/internal/config"
	counterpartyStore "github.com/stubdesk/backoffice/internal/counterparty/store"
	"github.com/stubdesk/backoffice/internal/database"
	backofficeHttp "github.com/stubdesk/backoffice/internal/http"
	txHandler "github.com/stubdesk/backoffice/internal/http/ledger"
	recordHandler "github.com/stubdesk/backoffice/internal/http/record"
	"github.com/stubdesk/backoffice/internal/ledger"
	ledgerStore "github.com/stubdesk/backoffice/internal/ledger/store"
	"github.com/stubdesk/backoffice/internal/record"
	recordStore "github.com/stubdesk/backoffice/internal/record/store"
	"github.com/stubdesk/backoffice/internal/sequence"
	sequenceStore "github.com/stubdesk/backoffice/internal/sequence/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	vendors := counterpartyStore.New(db)

	var (
		sequenceService = sequence.NewService(sequenceStore.New(db))
		ledgerService   = ledger.NewService(ledgerStore.New(db), sequenceService, vendors, vendors)
		recordService   = record.NewService(recordStore.New(db), sequenceService, vendors, ledgerService)
	)

	var (
		recordH = recordHandler.NewHandler(recordService)
		txH     = txHandler.NewHandler(ledgerService)
	)

	router := backofficeHttp.New(recordH, txH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
