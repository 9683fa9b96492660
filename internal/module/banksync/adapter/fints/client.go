// Package fints is a reference BankAdapter implementation against a
// FinTS-compatible HTTP gateway. Real deployments swap in whatever the
// user's bank actually speaks; this adapter exists to exercise the port
// and to give local/dev syncs something to run against.
package fints

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ledgersync/internal/module/banksync/adapter"
	banktxdomain "ledgersync/internal/module/banksync/banktransaction/domain"

	"github.com/shopspring/decimal"
)

const requestTimeout = 30 * time.Second

// Client implements adapter.BankAdapter against a FinTS gateway's REST
// facade (the wire protocol itself is a non-goal; this client assumes a
// gateway that already speaks FinTS and exposes a JSON API over it).
type Client struct {
	httpClient  *http.Client
	endpoint    string
	secrets     map[string]string
	tanMethod   string
	tanMedium   string
	tanCallback adapter.TANCallback
}

// NewClient builds an unconnected FinTS adapter client.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: requestTimeout}}
}

func (c *Client) Connect(ctx context.Context, credentials adapter.Credentials) error {
	c.endpoint = credentials.Endpoint
	c.secrets = credentials.Secrets

	req, err := c.newRequest(ctx, http.MethodPost, "/session", map[string]any{
		"bank_code":  credentials.BankCode,
		"tan_method": c.tanMethod,
		"tan_medium": c.tanMedium,
	})
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("fints connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		return c.resolveTANChallenge(ctx, resp)
	}
	return checkStatus(resp)
}

// resolveTANChallenge handles the two-factor step: the gateway returns a
// challenge string, the caller's callback resolves it to a one-time code,
// and that code is submitted to complete the session.
func (c *Client) resolveTANChallenge(ctx context.Context, resp *http.Response) error {
	var body struct {
		Challenge string `json:"challenge"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("fints decode tan challenge: %w", err)
	}
	if c.tanCallback == nil {
		return fmt.Errorf("fints connect: tan challenge received but no callback configured")
	}

	tan, err := c.tanCallback(ctx, body.Challenge)
	if err != nil {
		return fmt.Errorf("fints resolve tan: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/session/tan", map[string]any{"tan": tan})
	if err != nil {
		return err
	}
	confirmResp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("fints confirm tan: %w", err)
	}
	defer confirmResp.Body.Close()
	return checkStatus(confirmResp)
}

func (c *Client) Disconnect(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/session", nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("fints disconnect: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

type accountResponse struct {
	IBAN     string   `json:"iban"`
	Balance  *float64 `json:"balance"`
	Currency string   `json:"currency"`
	Holder   string   `json:"holder"`
}

func (c *Client) FetchAccounts(ctx context.Context) ([]adapter.BankAccount, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/accounts", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("fints fetch accounts: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body struct {
		Accounts []accountResponse `json:"accounts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("fints decode accounts: %w", err)
	}

	out := make([]adapter.BankAccount, 0, len(body.Accounts))
	for _, a := range body.Accounts {
		account := adapter.BankAccount{IBAN: a.IBAN, Currency: a.Currency, Holder: a.Holder}
		if a.Balance != nil {
			b := decimal.NewFromFloat(*a.Balance)
			account.Balance = &b
		}
		out = append(out, account)
	}
	return out, nil
}

type transactionResponse struct {
	BookingDate   string  `json:"booking_date"`
	ValueDate     string  `json:"value_date"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Purpose       string  `json:"purpose"`
	ApplicantName *string `json:"applicant_name"`
	ApplicantIBAN *string `json:"applicant_iban"`
	ApplicantBIC  *string `json:"applicant_bic"`
	BankReference *string `json:"bank_reference"`
	CustomerRef   *string `json:"customer_reference"`
	EndToEndRef   *string `json:"end_to_end_reference"`
	MandateRef    *string `json:"mandate_reference"`
}

func (c *Client) FetchTransactions(ctx context.Context, iban string, start, end time.Time) ([]banktxdomain.BankTransaction, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/accounts/%s/transactions?from=%s&to=%s",
		iban, start.Format("2006-01-02"), end.Format("2006-01-02")), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("fints fetch transactions: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("fints decode transactions: %w", err)
	}

	out := make([]banktxdomain.BankTransaction, 0, len(body.Transactions))
	for _, t := range body.Transactions {
		booking, _ := time.Parse("2006-01-02", t.BookingDate)
		value, _ := time.Parse("2006-01-02", t.ValueDate)
		out = append(out, banktxdomain.BankTransaction{
			IBAN:          iban,
			BookingDate:   booking,
			ValueDate:     value,
			Amount:        decimal.NewFromFloat(t.Amount),
			Currency:      t.Currency,
			Purpose:       t.Purpose,
			ApplicantName: t.ApplicantName,
			ApplicantIBAN: t.ApplicantIBAN,
			ApplicantBIC:  t.ApplicantBIC,
			BankReference: t.BankReference,
			CustomerRef:   t.CustomerRef,
			EndToEndRef:   t.EndToEndRef,
			MandateRef:    t.MandateRef,
		})
	}
	return out, nil
}

func (c *Client) SetTANMethod(method string)          { c.tanMethod = method }
func (c *Client) SetTANMedium(medium string)          { c.tanMedium = medium }
func (c *Client) SetTANCallback(cb adapter.TANCallback) { c.tanCallback = cb }

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("fints marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return nil, fmt.Errorf("fints build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token, ok := c.secrets["access_token"]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("fints gateway error: status %d, body: %s", resp.StatusCode, string(body))
}

var _ adapter.BankAdapter = (*Client)(nil)
