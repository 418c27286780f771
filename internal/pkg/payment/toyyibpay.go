package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amirulizwan/KedaiKit/internal/pkg/env"
)

const (
	defaultToyyibAPIBaseURL = "https://toyyibpay.com"

	// Provider is the ledger key under which ToyyibPay webhooks are recorded.
	Provider = "toyyibpay"
)

// Gateway is the payment surface the order service depends on. Tests
// substitute fakes; production uses *Client.
type Gateway interface {
	CreateBill(ctx context.Context, in CreateBillInput) CreateBillResult
	GetBillTransactions(ctx context.Context, billCode string) ([]BillTransaction, error)
	VerifyWebhook(ctx context.Context, payload WebhookPayload) VerifyResult
}

// Client talks to the ToyyibPay HTTP API. ToyyibPay has no cryptographic
// webhook signatures; authenticity is established by querying the bill's own
// transaction record back from the provider.
type Client struct {
	APIBaseURL   string
	SecretKey    string
	CategoryCode string

	HTTPClient *http.Client
}

// CreateBillInput carries the fixed set of billing fields ToyyibPay accepts.
// Amount is in minor units (RM 1 = 100); ExternalReferenceNo is the internal
// order id.
type CreateBillInput struct {
	Name                string
	Description         string
	AmountCents         int64
	ReturnURL           string
	CallbackURL         string
	ExternalReferenceNo string
	PayorName           string
	PayorEmail          string
	PayorPhone          string
}

type CreateBillResult struct {
	Success    bool
	BillCode   string
	PaymentURL string
	Error      string
}

// BillTransaction is the subset of ToyyibPay's transaction record this core
// depends on.
type BillTransaction struct {
	BillName                string `json:"billName"`
	BillTo                  string `json:"billTo"`
	BillEmail               string `json:"billEmail"`
	BillPhone               string `json:"billPhone"`
	BillStatus              string `json:"billStatus"`
	BillPaymentStatus       string `json:"billpaymentStatus"`
	BillPaymentAmount       string `json:"billpaymentAmount"`
	BillPaymentInvoiceNo    string `json:"billpaymentInvoiceNo"`
	BillExternalReferenceNo string `json:"billExternalReferenceNo"`
	CategoryCode            string `json:"categoryCode"`
}

// WebhookPayload is the callback body ToyyibPay posts, form-encoded or JSON.
type WebhookPayload struct {
	RefNo    string `json:"refno" form:"refno"`
	Status   string `json:"status" form:"status"`
	Reason   string `json:"reason" form:"reason"`
	BillCode string `json:"billcode" form:"billcode"`
	OrderID  string `json:"order_id" form:"order_id"`
	Amount   string `json:"amount" form:"amount"`
}

// VerifyResult reports webhook verification. OrderID is the authoritative
// external reference from the provider's own record, which callers must prefer
// over the attacker-controllable raw payload field.
type VerifyResult struct {
	IsValid bool
	OrderID string
}

// NewClientFromEnv builds a ToyyibPay client from environment configuration.
func NewClientFromEnv() *Client {
	return &Client{
		APIBaseURL:   strings.TrimRight(env.GetEnv("TOYYIB_API_URL", defaultToyyibAPIBaseURL), "/"),
		SecretKey:    strings.TrimSpace(env.GetEnv("TOYYIB_SECRET_KEY", "")),
		CategoryCode: strings.TrimSpace(env.GetEnv("TOYYIB_CATEGORY_CODE", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateBill submits a bill to the provider. Any non-success shape comes back
// as a failed result, not an error: the caller decides the order's fate.
func (c *Client) CreateBill(ctx context.Context, in CreateBillInput) CreateBillResult {
	form := url.Values{}
	form.Set("userSecretKey", c.SecretKey)
	form.Set("categoryCode", c.CategoryCode)
	form.Set("billName", in.Name)
	form.Set("billDescription", in.Description)
	form.Set("billPriceSetting", "1")
	form.Set("billPayorInfo", "1")
	form.Set("billAmount", fmt.Sprintf("%d", in.AmountCents))
	form.Set("billReturnUrl", in.ReturnURL)
	form.Set("billCallbackUrl", in.CallbackURL)
	form.Set("billExternalReferenceNo", in.ExternalReferenceNo)
	form.Set("billTo", in.PayorName)
	form.Set("billEmail", in.PayorEmail)
	form.Set("billPhone", in.PayorPhone)
	form.Set("billChargeToCustomer", "1")

	body, err := c.postForm(ctx, "/index.php/api/createBill", form)
	if err != nil {
		log.Printf("toyyibpay createBill request failed: %v", err)
		return CreateBillResult{Success: false, Error: err.Error()}
	}

	var out []struct {
		BillCode string `json:"BillCode"`
	}
	if err := json.Unmarshal(body, &out); err != nil || len(out) == 0 || strings.TrimSpace(out[0].BillCode) == "" {
		log.Printf("toyyibpay createBill returned unexpected response: %s", string(body))
		return CreateBillResult{Success: false, Error: "failed to create payment bill"}
	}

	billCode := strings.TrimSpace(out[0].BillCode)
	return CreateBillResult{
		Success:    true,
		BillCode:   billCode,
		PaymentURL: c.APIBaseURL + "/" + billCode,
	}
}

// GetBillTransactions is the read-only status query used for webhook
// verification and admin inspection.
func (c *Client) GetBillTransactions(ctx context.Context, billCode string) ([]BillTransaction, error) {
	if strings.TrimSpace(billCode) == "" {
		return nil, errors.New("bill code is required")
	}

	form := url.Values{}
	form.Set("billCode", billCode)

	body, err := c.postForm(ctx, "/index.php/api/getBillTransactions", form)
	if err != nil {
		return nil, err
	}

	var transactions []BillTransaction
	if err := json.Unmarshal(body, &transactions); err != nil {
		return nil, fmt.Errorf("toyyibpay getBillTransactions decode failed: %w", err)
	}
	return transactions, nil
}

// VerifyWebhook cross-checks the claimed bill against the provider's own
// transaction record. A webhook whose claimed order id does not match the
// authoritative external reference is rejected regardless of its status.
func (c *Client) VerifyWebhook(ctx context.Context, payload WebhookPayload) VerifyResult {
	transactions, err := c.GetBillTransactions(ctx, payload.BillCode)
	if err != nil {
		log.Printf("webhook verification error for bill %s: %v", payload.BillCode, err)
		return VerifyResult{IsValid: false}
	}
	if len(transactions) == 0 {
		log.Printf("webhook verification failed - no transactions found for bill %s", payload.BillCode)
		return VerifyResult{IsValid: false}
	}

	tx := transactions[0]
	if tx.BillExternalReferenceNo != payload.OrderID {
		log.Printf("webhook verification failed - order id mismatch: expected %s, received %s",
			tx.BillExternalReferenceNo, payload.OrderID)
		return VerifyResult{IsValid: false}
	}

	return VerifyResult{IsValid: true, OrderID: tx.BillExternalReferenceNo}
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("toyyibpay request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return body, nil
}

// IsPaymentSuccessful is the narrow success predicate over the provider's
// status code. Anything else is "not successful", never an error.
func IsPaymentSuccessful(status string) bool {
	return status == "1" || strings.EqualFold(status, "success")
}

// FormatAmount converts a decimal major-unit amount into the integer minor
// units ToyyibPay transacts in.
func FormatAmount(amountRM float64) int64 {
	return int64(math.Round(amountRM * 100))
}

// EventID builds the composite idempotency key for a webhook delivery. Neither
// the bill code nor the gateway reference alone is unique per attempt.
func EventID(payload WebhookPayload) string {
	return payload.BillCode + ":" + payload.RefNo
}
