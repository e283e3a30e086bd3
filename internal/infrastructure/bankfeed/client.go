package bankfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.bankfeed.dev/aggregation"
	defaultTimeout = 120 * time.Second // transaction pages can be large

	authenticationPath = "/v2/partners/authentication"
	customersPath      = "/v2/customers"
	accountsPathFmt    = "/v1/customers/%s/accounts"
	transactionsFmt    = "/v3/customers/%s/transactions"

	appKeyHeader   = "Bankfeed-App-Key"
	appTokenHeader = "Bankfeed-App-Token"
)

// ErrMissingCredentials is returned when partner credentials are not
// configured. This is a deployment problem, not a transient failure:
// callers must surface it and never retry.
var ErrMissingCredentials = errors.New("bankfeed partner credentials not configured")

// RequestError is any non-success response from the aggregator.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("bankfeed request failed with status %d: %s", e.StatusCode, e.Body)
}

// Config holds integration-level credentials for the aggregator.
// The aggregator authenticates the integration, not the end user.
type Config struct {
	BaseURL       string
	PartnerID     string
	PartnerSecret string
	AppKey        string
}

// Client handles communication with the bank aggregation API
type Client struct {
	httpClient *http.Client
	baseURL    string
	partnerID  string
	secret     string
	appKey     string
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a new aggregator API client
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:   baseURL,
		partnerID: cfg.PartnerID,
		secret:    cfg.PartnerSecret,
		appKey:    cfg.AppKey,
	}
}

// FlexID is an identifier the aggregator serializes sometimes as a JSON
// string and sometimes as a JSON number. It always normalizes to a string.
type FlexID string

// UnmarshalJSON accepts both `"123"` and `123`.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", data)
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// Account represents one account in the aggregator's listing.
type Account struct {
	ID           FlexID         `json:"id"`
	Name         string         `json:"name"`
	OfficialName string         `json:"officialName"`
	Number       string         `json:"number"` // masked by the aggregator
	Type         string         `json:"type"`
	Detail       *AccountDetail `json:"detail"`
	Balance      float64        `json:"balance"`
}

// AccountDetail carries the optional account subtype.
type AccountDetail struct {
	Type string `json:"type"`
}

// Subtype returns the detail type, or empty when the aggregator omitted it.
func (a *Account) Subtype() string {
	if a.Detail == nil {
		return ""
	}
	return a.Detail.Type
}

// Transaction represents one transaction in a paginated listing.
// Amount sign is meaningful: positive is inbound.
type Transaction struct {
	ID             FlexID  `json:"id"`
	AccountID      FlexID  `json:"accountId"`
	PostedDate     int64   `json:"postedDate"` // epoch seconds
	Description    string  `json:"description"`
	Amount         float64 `json:"amount"`
	CurrencySymbol string  `json:"currencySymbol"`
}

// TransactionQuery bounds one page request. FromDate/ToDate are epoch
// seconds; the aggregator rejects ranges wider than 180 days. Start is
// 1-based.
type TransactionQuery struct {
	FromDate int64
	ToDate   int64
	Start    int
	Limit    int
}

// TransactionPage is the aggregator's paginated transaction response.
type TransactionPage struct {
	Transactions  []Transaction `json:"transactions"`
	Displaying    int           `json:"displaying"`
	MoreAvailable bool          `json:"moreAvailable"`
}

type authRequest struct {
	PartnerID     string `json:"partnerId"`
	PartnerSecret string `json:"partnerSecret"`
}

type authResponse struct {
	Token string `json:"token"`
}

type createCustomerRequest struct {
	Username string `json:"username"`
}

type createCustomerResponse struct {
	ID FlexID `json:"id"`
}

type accountsResponse struct {
	Accounts []Account `json:"accounts"`
}

// Authenticate exchanges partner credentials for a short-lived access token.
// The token is opaque; attach it to subsequent calls alongside the app key.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if c.partnerID == "" || c.secret == "" || c.appKey == "" {
		return "", ErrMissingCredentials
	}

	body := authRequest{PartnerID: c.partnerID, PartnerSecret: c.secret}

	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+authenticationPath, "", body, &resp); err != nil {
		return "", fmt.Errorf("partner authentication failed: %w", err)
	}

	if resp.Token == "" {
		return "", fmt.Errorf("partner authentication returned an empty token")
	}

	return resp.Token, nil
}

// CreateCustomer registers a new aggregator customer for the given username
// and returns its id.
func (c *Client) CreateCustomer(ctx context.Context, token, username string) (string, error) {
	body := createCustomerRequest{Username: username}

	var resp createCustomerResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+customersPath, token, body, &resp); err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}

	if resp.ID == "" {
		return "", fmt.Errorf("customer creation returned an empty id")
	}

	return resp.ID.String(), nil
}

// GetCustomerAccounts fetches the full remote account list for a customer.
func (c *Client) GetCustomerAccounts(ctx context.Context, token, customerID string) ([]Account, error) {
	url := c.baseURL + fmt.Sprintf(accountsPathFmt, customerID)

	var resp accountsResponse
	if err := c.doJSON(ctx, http.MethodGet, url, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch accounts for customer %s: %w", customerID, err)
	}

	return resp.Accounts, nil
}

// GetTransactions fetches one page of transaction history for a customer.
func (c *Client) GetTransactions(ctx context.Context, token, customerID string, q TransactionQuery) (*TransactionPage, error) {
	params := url.Values{}
	params.Set("fromDate", strconv.FormatInt(q.FromDate, 10))
	params.Set("toDate", strconv.FormatInt(q.ToDate, 10))
	params.Set("start", strconv.Itoa(q.Start))
	params.Set("limit", strconv.Itoa(q.Limit))

	url := c.baseURL + fmt.Sprintf(transactionsFmt, customerID) + "?" + params.Encode()

	var resp TransactionPage
	if err := c.doJSON(ctx, http.MethodGet, url, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for customer %s: %w", customerID, err)
	}

	return &resp, nil
}

// doJSON executes one request with the aggregator's header scheme and
// decodes the JSON response into out. A non-2xx status becomes a
// *RequestError.
func (c *Client) doJSON(ctx context.Context, method, url, token string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(appKeyHeader, c.appKey)
	if token != "" {
		req.Header.Set(appTokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
