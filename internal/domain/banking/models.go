package banking

import (
	"time"
)

// ProviderName identifies the aggregator that sourced a mirrored record.
const ProviderName = "bankfeed"

// DefaultCurrency is used when the aggregator omits a transaction currency.
const DefaultCurrency = "USD"

// Account is the local mirror of one remote bank account. The document id
// equals the remote account id. An account exists locally exactly as long as
// the aggregator reports it: created on the first reconciliation pass that
// observes it, deleted the moment a listing no longer contains it.
type Account struct {
	ID           string    `firestore:"id" json:"id"`
	WorkspaceID  string    `firestore:"workspaceId" json:"workspaceId"`
	Name         string    `firestore:"name" json:"name"`
	OfficialName string    `firestore:"officialName" json:"officialName,omitempty"`
	MaskedNumber string    `firestore:"maskedNumber" json:"maskedNumber"`
	Type         string    `firestore:"type" json:"type"`
	Subtype      string    `firestore:"subtype" json:"subtype,omitempty"`
	Balance      float64   `firestore:"balance" json:"balance"`
	Provider     string    `firestore:"provider" json:"provider"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Transaction is the local mirror of one remote transaction. The document id
// equals the remote transaction id and is the idempotency key: re-ingesting
// the same id replaces field values instead of duplicating the record.
// Amount is signed; positive is inbound.
type Transaction struct {
	ID          string    `firestore:"id" json:"id"`
	WorkspaceID string    `firestore:"workspaceId" json:"workspaceId"`
	AccountID   string    `firestore:"accountId" json:"accountId"`
	PostedAt    time.Time `firestore:"postedAt" json:"postedAt"`
	Description string    `firestore:"description" json:"description"`
	Amount      float64   `firestore:"amount" json:"amount"`
	Currency    string    `firestore:"currency" json:"currency"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}
