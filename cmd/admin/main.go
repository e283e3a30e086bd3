package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"fresco/internal/domain/banking"
	"fresco/internal/infrastructure/bankfeed"
	"fresco/internal/infrastructure/firebase"
	"fresco/internal/shared/config"
)

const usage = `Fresco Admin CLI - Management commands for the bank sync engine

Usage:
  admin <command> [options]

Commands:
  resync    Run a full reconciliation pass for one or more workspaces

Examples:
  # Resync a specific workspace
  admin resync --workspace-id=ws-1

  # Resync several workspaces
  admin resync --workspace-id=ws-1,ws-2,ws-3

  # Resync every workspace with a bank connection
  admin resync --all

  # Run with custom concurrency and timeout
  admin resync --all --workers=8 --timeout=1h
`

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("%s\n", usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "resync":
		runResync(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Printf("%s\n", usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Printf("%s\n", usage)
		os.Exit(1)
	}
}

func runResync(args []string) {
	fs := flag.NewFlagSet("resync", flag.ExitOnError)

	workspaceIDStr := fs.String("workspace-id", "", "Workspace ID(s) to resync (comma-separated for multiple)")
	allWorkspaces := fs.Bool("all", false, "Resync all workspaces with a bank connection")
	workers := fs.Int("workers", 4, "Number of concurrent workers")
	timeoutStr := fs.String("timeout", "30m", "Timeout for the operation (e.g., 5m, 1h)")

	fs.Usage = func() {
		fmt.Println("Usage: admin resync [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  admin resync --workspace-id=ws-1")
		fmt.Println("  admin resync --workspace-id=ws-1,ws-2")
		fmt.Println("  admin resync --all --workers=8 --timeout=1h")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *workspaceIDStr == "" && !*allWorkspaces {
		fmt.Println("Error: must specify --workspace-id or --all")
		fs.Usage()
		os.Exit(1)
	}

	// Parse timeout
	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Connect to the document store
	fb, err := firebase.NewClient(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to connect to Firestore: %v", err)
	}
	defer fb.Close()
	log.Println("Connected to Firestore")

	// Wire the sync engine
	workspaceRepo := firebase.NewWorkspaceRepository(fb)
	syncStore := firebase.NewSyncStore(fb)
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

	var workspaceIDs []string
	if *allWorkspaces {
		workspaces, err := workspaceRepo.ListBankLinked(ctx)
		if err != nil {
			log.Fatalf("Failed to list workspaces: %v", err)
		}
		for _, ws := range workspaces {
			workspaceIDs = append(workspaceIDs, ws.ID)
		}
		log.Printf("Found %d workspaces with a bank connection", len(workspaceIDs))
	} else {
		for _, p := range strings.Split(*workspaceIDStr, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				workspaceIDs = append(workspaceIDs, p)
			}
		}
	}

	if len(workspaceIDs) == 0 {
		log.Println("No workspaces to process")
		return
	}

	log.Printf("Starting resync for %d workspace(s) with %d workers", len(workspaceIDs), *workers)
	startTime := time.Now()

	// Bounded concurrency over the workspace list
	sem := make(chan struct{}, *workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for _, id := range workspaceIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(workspaceID string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := reconciler.SyncWorkspace(ctx, workspaceID)
			if err != nil {
				log.Printf("Workspace %s: resync failed: %v", workspaceID, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			printResult(result)
		}(id)
	}
	wg.Wait()

	elapsed := time.Since(startTime)
	log.Printf("Resync completed in %v (%d succeeded, %d failed)", elapsed, len(workspaceIDs)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func printResult(result *banking.SyncResult) {
	fmt.Printf("\n=== Workspace %s ===\n", result.WorkspaceID)
	fmt.Printf("  Run ID:            %s\n", result.RunID)
	fmt.Printf("  Remote accounts:   %d\n", result.AccountsFound)
	fmt.Printf("  Accounts created:  %d\n", result.Created)
	fmt.Printf("  Accounts updated:  %d\n", result.Updated)
	fmt.Printf("  Accounts deleted:  %d\n", result.Deleted)
}
