package cashtime

import (
	"encoding/json"
	"math"
	"time"
)

// ProviderID is the transaction identifier issued by Cashtime. Status lookups
// take a ProviderID, never the client-generated TransactionID attached to a
// PaymentResult.
type ProviderID string

// PaymentRequest carries the inputs for a PIX charge. Amount is in major
// units (reais) and must be positive; Description must be non-empty. The
// customer fields are optional and substituted with placeholder defaults when
// absent. ExpirationMinutes defaults to 60.
type PaymentRequest struct {
	Amount            float64
	Description       string
	Name              string
	Email             string
	Phone             string
	CPF               string
	ExpirationMinutes int
}

// Payer echoes the customer identity attached to a payment.
type Payer struct {
	Name  string `json:"name,omitempty"`
	CPF   string `json:"cpf,omitempty"`
	Email string `json:"email,omitempty"`
}

// PaymentResult is the outcome of a successful PIX creation.
type PaymentResult struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"txid"`
	ProviderID    ProviderID      `json:"cashtime_id"`
	Amount        float64         `json:"amount"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	PixCode       string          `json:"pix_code"`
	QRCodeImage   string          `json:"qr_code_image"`
	ExpiresAt     time.Time       `json:"expires_at"`
	CreatedAt     time.Time       `json:"created_at"`
	Payer         Payer           `json:"payer"`
	Raw           json.RawMessage `json:"cashtime_response,omitempty"`
}

// StatusResult is the outcome of a status lookup. It is always returned,
// never an error: failures set Success to false and Error to a message.
type StatusResult struct {
	Success       bool            `json:"success"`
	Error         string          `json:"error,omitempty"`
	ProviderID    ProviderID      `json:"txid,omitempty"`
	Status        string          `json:"status,omitempty"`
	Amount        float64         `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
	UpdatedAt     string          `json:"updated_at,omitempty"`
	Raw           json.RawMessage `json:"cashtime_response,omitempty"`
}

// transactionPayload is the wire shape POSTed to /transactions.
type transactionPayload struct {
	PaymentMethod  string     `json:"paymentMethod"`
	Customer       customer   `json:"customer"`
	Items          []lineItem `json:"items"`
	IsInfoProducts bool       `json:"isInfoProducts"`
	Installments   int        `json:"installments"`
	InstallmentFee int        `json:"installmentFee"`
	PostbackURL    string     `json:"postbackUrl"`
	IP             string     `json:"ip"`
	Amount         int64      `json:"amount"`
}

type customer struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Document document `json:"document"`
}

type document struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type lineItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Tangible    bool   `json:"tangible"`
}

// transactionResponse captures the fields read from a creation response.
// Anything Cashtime omits decodes to its zero value; the full body is kept
// separately as raw JSON.
type transactionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Pix    struct {
		Payload      string `json:"payload"`
		EncodedImage string `json:"encodedImage"`
	} `json:"pix"`
}

// statusResponse captures the nested orders object of a status lookup.
type statusResponse struct {
	Orders struct {
		Status        string `json:"status"`
		Total         int64  `json:"total"`
		PaymentMethod string `json:"paymentMethod"`
		CreatedAt     string `json:"createdAt"`
		UpdatedAt     string `json:"updatedAt"`
	} `json:"orders"`
}

// toMinorUnits converts reais to centavos, truncating toward zero on the
// decimal value: 10.005 becomes 1000, not 1001. Float64 products sit a hair
// off the decimal (19.90*100 is 1989.999...), so sub-cent noise is rounded
// away at micro-cent precision before truncating.
func toMinorUnits(amount float64) int64 {
	cents := math.Round(amount*100*1e6) / 1e6
	return int64(math.Trunc(cents))
}

// fromMinorUnits converts a centavo total back to reais; a zero total stays 0.
func fromMinorUnits(total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(total) / 100
}
