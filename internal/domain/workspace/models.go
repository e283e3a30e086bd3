package workspace

import (
	"time"
)

// Workspace is one tenant of the back office: a creator business.
// Identity and membership live in an external service; the only fields this
// subsystem relies on are the owner's email and the bank customer mapping.
type Workspace struct {
	ID             string    `firestore:"id" json:"id"`
	Name           string    `firestore:"name" json:"name"`
	OwnerEmail     string    `firestore:"ownerEmail" json:"ownerEmail"`
	BankCustomerID string    `firestore:"bankCustomerId" json:"-"` // aggregator customer id, at most one per workspace
	BankLinked     bool      `firestore:"bankLinked" json:"bankLinked"`
	CreatedAt      time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Username returns the identity the aggregator customer is registered under.
// Falls back to a value synthesized from the workspace id when no email is
// known.
func (w *Workspace) Username() string {
	if w.OwnerEmail != "" {
		return w.OwnerEmail
	}
	return "workspace-" + w.ID
}
