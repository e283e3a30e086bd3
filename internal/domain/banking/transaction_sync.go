package banking

import (
	"context"
	"log"
	"time"

	"fresco/internal/infrastructure/bankfeed"
)

// SyncConfig bounds how much history a pass fetches and how it is paged.
type SyncConfig struct {
	// HistoryMonths is the total history length to mirror, in calendar
	// months approximated as 30 days each.
	HistoryMonths int

	// WindowDays caps a single date range. The aggregator rejects
	// transaction queries wider than 180 days.
	WindowDays int

	// PageLimit is the per-request page size.
	PageLimit int
}

// DefaultSyncConfig mirrors three months of history under the aggregator's
// 180-day range ceiling.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		HistoryMonths: 3,
		WindowDays:    180,
		PageLimit:     1000,
	}
}

// syncWindow is one unit of paginated fetch work.
type syncWindow struct {
	from time.Time
	to   time.Time
}

// windows splits the configured history into non-overlapping date ranges of
// at most WindowDays each, ordered most recent first. The window count is
// ceil(months*30 / windowDays), never less than one.
func (c SyncConfig) windows(now time.Time) []syncWindow {
	totalDays := c.HistoryMonths * 30
	count := (totalDays + c.WindowDays - 1) / c.WindowDays
	if count < 1 {
		count = 1
	}

	historyStart := now.AddDate(0, 0, -totalDays)

	out := make([]syncWindow, 0, count)
	for i := 0; i < count; i++ {
		to := now.AddDate(0, 0, -i*c.WindowDays)
		from := now.AddDate(0, 0, -(i+1)*c.WindowDays)
		if from.Before(historyStart) {
			from = historyStart
		}
		out = append(out, syncWindow{from: from, to: to})
	}
	return out
}

// TransactionIngester fetches transaction history for an aggregator customer
// across bounded date windows and stages idempotent upserts into a batch
// supplied by the caller.
type TransactionIngester struct {
	client bankfeed.ClientInterface
	cfg    SyncConfig

	now func() time.Time // injectable clock for tests
}

// NewTransactionIngester creates a new transaction ingester
func NewTransactionIngester(client bankfeed.ClientInterface, cfg SyncConfig) *TransactionIngester {
	return &TransactionIngester{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Ingest pages through the customer's transaction history window by window,
// newest first, staging every transaction as an upsert on batch.
//
// A failed request abandons only the current window; prior windows' staged
// writes are kept and the loop proceeds to the next window. There are no
// in-process retries: upserts are idempotent and the next full resync
// re-attempts the same ranges, so a lost window heals on the next cycle.
func (ing *TransactionIngester) Ingest(ctx context.Context, workspaceID, customerID, token string, batch Batch) {
	now := ing.now()

	for _, w := range ing.cfg.windows(now) {
		if err := ing.ingestWindow(ctx, workspaceID, customerID, token, batch, w, now); err != nil {
			log.Printf("Workspace %s: Abandoning transaction window %s..%s: %v",
				workspaceID, w.from.Format("2006-01-02"), w.to.Format("2006-01-02"), err)
		}
	}
}

// ingestWindow pages through one date window. The page cursor advances by
// the count of items already seen; paging stops when the aggregator reports
// no more results.
func (ing *TransactionIngester) ingestWindow(ctx context.Context, workspaceID, customerID, token string, batch Batch, w syncWindow, now time.Time) error {
	seen := 0

	for {
		page, err := ing.client.GetTransactions(ctx, token, customerID, bankfeed.TransactionQuery{
			FromDate: w.from.Unix(),
			ToDate:   w.to.Unix(),
			Start:    seen + 1,
			Limit:    ing.cfg.PageLimit,
		})
		if err != nil {
			return err
		}

		for i := range page.Transactions {
			batch.PutTransaction(mapTransaction(&page.Transactions[i], workspaceID, now))
		}

		if !page.MoreAvailable {
			return nil
		}

		returned := page.Displaying
		if returned <= 0 {
			returned = len(page.Transactions)
		}
		if returned == 0 {
			// moreAvailable with an empty page would loop forever
			return nil
		}
		seen += returned
	}
}

// mapTransaction converts an aggregator transaction to the local mirror
// shape. Amount sign is preserved; a missing currency defaults.
func mapTransaction(tx *bankfeed.Transaction, workspaceID string, now time.Time) *Transaction {
	currency := tx.CurrencySymbol
	if currency == "" {
		currency = DefaultCurrency
	}

	return &Transaction{
		ID:          tx.ID.String(),
		WorkspaceID: workspaceID,
		AccountID:   tx.AccountID.String(),
		PostedAt:    time.Unix(tx.PostedDate, 0).UTC(),
		Description: tx.Description,
		Amount:      tx.Amount,
		Currency:    currency,
		CreatedAt:   now,
	}
}
