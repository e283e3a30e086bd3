package main

import (
	"context"
	"log"

	"fresco/internal/domain/banking"
	"fresco/internal/infrastructure/bankfeed"
	"fresco/internal/infrastructure/firebase"
	httphandlers "fresco/internal/interfaces/http"
	"fresco/internal/shared/config"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	Firebase *firebase.Client

	// Handlers
	WebhookHandler *httphandlers.WebhookHandler
	ConnectHandler *httphandlers.ConnectHandler

	// Sync engine (for scheduler and admin surfaces)
	Reconciler *banking.Reconciler

	// Repositories (for scheduler job provider)
	WorkspaceRepo *firebase.WorkspaceRepository
}

// NewDependencies initializes all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	// Connect to the document store
	fb, err := firebase.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
	if err != nil {
		return nil, err
	}
	log.Println("Connected to Firestore")

	// Initialize repositories
	workspaceRepo := firebase.NewWorkspaceRepository(fb)
	syncStore := firebase.NewSyncStore(fb)

	// Initialize aggregator client and sync engine
	client := bankfeed.NewClient(bankfeed.Config{
		BaseURL:       cfg.Bankfeed.BaseURL,
		PartnerID:     cfg.Bankfeed.PartnerID,
		PartnerSecret: cfg.Bankfeed.PartnerSecret,
		AppKey:        cfg.Bankfeed.AppKey,
	})

	tokens := banking.NewTokenSource(client)
	provisioner := banking.NewCustomerProvisioner(client, workspaceRepo)
	ingester := banking.NewTransactionIngester(client, banking.SyncConfig{
		HistoryMonths: cfg.Sync.HistoryMonths,
		WindowDays:    cfg.Sync.WindowDays,
		PageLimit:     cfg.Sync.PageLimit,
	})
	reconciler := banking.NewReconciler(client, tokens, provisioner, ingester, syncStore)

	// Initialize handlers
	webhookHandler := httphandlers.NewWebhookHandler(reconciler, workspaceRepo)
	connectHandler := httphandlers.NewConnectHandler(tokens, provisioner)

	return &Dependencies{
		Firebase:       fb,
		WebhookHandler: webhookHandler,
		ConnectHandler: connectHandler,
		Reconciler:     reconciler,
		WorkspaceRepo:  workspaceRepo,
	}, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.Firebase != nil {
		if err := d.Firebase.Close(); err != nil {
			log.Printf("Error closing Firestore client: %v", err)
		}
	}
}
