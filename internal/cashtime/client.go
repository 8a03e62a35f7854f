package cashtime

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.cashtime.com.br/v1"
	requestTimeout = 30 * time.Second

	txidPrefix               = "CASHTIME"
	defaultExpirationMinutes = 60

	// Placeholder customer identity accepted by Cashtime when the caller
	// supplies none.
	defaultCustomerName  = "Cliente"
	defaultCustomerEmail = "cliente@dominio.com.br"
	defaultCustomerPhone = "11999999999"

	defaultItemTitle = "Regularização de Débitos"
	placeholderIP    = "127.0.0.1"

	// Development placeholder used when CASHTIME_POSTBACK_URL is not set.
	defaultPostbackURL = "https://webhook.site/unique-uuid-4-testing"
)

// Client is a lightweight Cashtime PIX API client. It holds only immutable
// configuration, so a single instance is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	publicKey   string
	postbackURL string
}

// NewClient constructs a client. An empty secretKey or publicKey falls back
// to CASHTIME_SECRET_KEY / CASHTIME_PUBLIC_KEY; the secret key is required,
// the public key is not (Cashtime accepts calls without it). The base URL and
// postback URL may be overridden via CASHTIME_BASE_URL and
// CASHTIME_POSTBACK_URL.
func NewClient(secretKey, publicKey string, httpClient *http.Client) (*Client, error) {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey == "" {
		secretKey = strings.TrimSpace(os.Getenv("CASHTIME_SECRET_KEY"))
	}
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}

	publicKey = strings.TrimSpace(publicKey)
	if publicKey == "" {
		publicKey = strings.TrimSpace(os.Getenv("CASHTIME_PUBLIC_KEY"))
	}

	baseURL := strings.TrimSpace(os.Getenv("CASHTIME_BASE_URL"))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	postbackURL := strings.TrimSpace(os.Getenv("CASHTIME_POSTBACK_URL"))
	if postbackURL == "" {
		postbackURL = defaultPostbackURL
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		secretKey:   secretKey,
		publicKey:   publicKey,
		postbackURL: postbackURL,
	}, nil
}

// NewClientFromEnv constructs a client using CASHTIME_* environment variables.
func NewClientFromEnv(httpClient *http.Client) (*Client, error) {
	return NewClient("", "", httpClient)
}

// headers builds the authentication headers sent on every call. The
// x-store-key header is present only when a public key is configured.
func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("x-authorization-key", c.secretKey)
	if c.publicKey != "" {
		h.Set("x-store-key", c.publicKey)
	}
	return h
}

// generateTxid produces the client-side transaction identifier: a fixed
// prefix, the current unix second and 4 random bytes as uppercase hex.
// Uniqueness is best-effort; nothing is checked against history.
func generateTxid() string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		binary.BigEndian.PutUint32(suffix, uint32(time.Now().UnixNano()))
	}
	return fmt.Sprintf("%s%d%X", txidPrefix, time.Now().Unix(), suffix)
}

// CreatePixPayment creates a PIX charge. The returned PaymentResult carries
// both the client-generated txid and the Cashtime-issued ProviderID; only the
// latter is valid for CheckPaymentStatus.
func (c *Client) CreatePixPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if req.Amount <= 0 {
		return nil, &ValidationError{Field: "amount"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, &ValidationError{Field: "description"}
	}

	txid := generateTxid()

	expirationMinutes := req.ExpirationMinutes
	if expirationMinutes <= 0 {
		expirationMinutes = defaultExpirationMinutes
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expirationMinutes) * time.Minute)

	amountCents := toMinorUnits(req.Amount)

	payload := transactionPayload{
		PaymentMethod: "pix",
		Customer: customer{
			Name:  orDefault(req.Name, defaultCustomerName),
			Email: orDefault(req.Email, defaultCustomerEmail),
			Phone: orDefault(req.Phone, defaultCustomerPhone),
			Document: document{
				Number: stripDocumentPunctuation(req.CPF),
				Type:   "cpf",
			},
		},
		Items: []lineItem{
			{
				Title:       defaultItemTitle,
				Description: req.Description,
				UnitPrice:   amountCents,
				Quantity:    1,
				Tangible:    false,
			},
		},
		IsInfoProducts: true,
		Installments:   1,
		InstallmentFee: 0,
		PostbackURL:    c.postbackURL,
		IP:             placeholderIP,
		Amount:         amountCents,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode transaction payload: %w", err)
	}

	log.Printf("cashtime: creating pix transaction txid=%s payload=%s", txid, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build transaction request: %w", err)
	}
	httpReq.Header = c.headers()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	log.Printf("cashtime: transaction response status=%d body=%s", resp.StatusCode, respBody)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		switch resp.StatusCode {
		case http.StatusForbidden:
			return nil, ErrAuthentication
		case http.StatusBadRequest:
			return nil, ErrInvalidPayload
		default:
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}
	}

	var txn transactionResponse
	if err := json.Unmarshal(respBody, &txn); err != nil {
		return nil, fmt.Errorf("decode transaction response: %w", err)
	}

	status := txn.Status
	if status == "" {
		status = "pending"
	}

	return &PaymentResult{
		Success:       true,
		TransactionID: txid,
		ProviderID:    ProviderID(txn.ID),
		Amount:        req.Amount,
		Currency:      "BRL",
		Description:   req.Description,
		Status:        status,
		PixCode:       txn.Pix.Payload,
		QRCodeImage:   txn.Pix.EncodedImage,
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		Payer: Payer{
			Name:  req.Name,
			CPF:   req.CPF,
			Email: req.Email,
		},
		Raw: respBody,
	}, nil
}

// CheckPaymentStatus looks up a transaction by its Cashtime-issued id. It
// never returns an error: every failure, including transport errors, lands in
// the result with Success false and a message.
func (c *Client) CheckPaymentStatus(ctx context.Context, id ProviderID) *StatusResult {
	if strings.TrimSpace(string(id)) == "" {
		return &StatusResult{Error: "transaction id is required"}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions/"+url.PathEscape(string(id)), nil)
	if err != nil {
		return &StatusResult{Error: fmt.Sprintf("build status request: %v", err)}
	}
	httpReq.Header = c.headers()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("cashtime: status check failed id=%s err=%v", id, err)
		return &StatusResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &StatusResult{Error: err.Error()}
	}

	log.Printf("cashtime: status response id=%s status=%d", id, resp.StatusCode)

	if resp.StatusCode == http.StatusNotFound {
		return &StatusResult{Error: "transaction not found"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusResult{Error: fmt.Sprintf("cashtime api returned status %d", resp.StatusCode)}
	}

	var st statusResponse
	if err := json.Unmarshal(respBody, &st); err != nil {
		return &StatusResult{Error: fmt.Sprintf("decode status response: %v", err)}
	}

	status := st.Orders.Status
	if status == "" {
		status = "unknown"
	}

	return &StatusResult{
		Success:       true,
		ProviderID:    id,
		Status:        status,
		Amount:        fromMinorUnits(st.Orders.Total),
		PaymentMethod: st.Orders.PaymentMethod,
		CreatedAt:     st.Orders.CreatedAt,
		UpdatedAt:     st.Orders.UpdatedAt,
		Raw:           respBody,
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

var documentPunctuation = strings.NewReplacer(".", "", "-", "")

func stripDocumentPunctuation(cpf string) string {
	return documentPunctuation.Replace(cpf)
}
