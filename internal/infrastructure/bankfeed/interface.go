package bankfeed

import (
	"context"
)

// ClientInterface defines the methods required from the bank aggregation API client
type ClientInterface interface {
	Authenticate(ctx context.Context) (string, error)
	CreateCustomer(ctx context.Context, token, username string) (string, error)
	GetCustomerAccounts(ctx context.Context, token, customerID string) ([]Account, error)
	GetTransactions(ctx context.Context, token, customerID string, q TransactionQuery) (*TransactionPage, error)
}
