package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/berniyo/cashtime-lambda/internal/cashtime"
)

// Supported event actions.
const (
	ActionCreate = "create"
	ActionStatus = "status"
)

// PaymentClient defines the subset of the Cashtime client used by the processor.
type PaymentClient interface {
	CreatePixPayment(ctx context.Context, req cashtime.PaymentRequest) (*cashtime.PaymentResult, error)
	CheckPaymentStatus(ctx context.Context, id cashtime.ProviderID) *cashtime.StatusResult
}

// PaymentEvent represents the payload sent to the Lambda function. Action
// defaults to "create"; "status" requires TransactionID, which must be the
// Cashtime-issued id from a previous PaymentResult, not the client txid.
type PaymentEvent struct {
	Action            string  `json:"action,omitempty"`
	Amount            float64 `json:"amount,omitempty"`
	Description       string  `json:"description,omitempty"`
	Name              string  `json:"name,omitempty"`
	Email             string  `json:"email,omitempty"`
	Phone             string  `json:"phone,omitempty"`
	CPF               string  `json:"cpf,omitempty"`
	ExpirationMinutes int     `json:"expirationMinutes,omitempty"`
	TransactionID     string  `json:"transactionId,omitempty"`
}

// PaymentResponse is emitted after processing completes. Exactly one of
// Payment and Status is set, depending on the action.
type PaymentResponse struct {
	Payment *cashtime.PaymentResult `json:"payment,omitempty"`
	Status  *cashtime.StatusResult  `json:"status,omitempty"`
	Request PaymentEvent            `json:"request"`
}

// CallbackSender delivers payment outcomes to downstream systems.
type CallbackSender interface {
	Send(ctx context.Context, payload PaymentResponse) error
}

// Processor dispatches payment events to the Cashtime client.
type Processor struct {
	client   PaymentClient
	logger   *log.Logger
	callback CallbackSender
}

// Option customizes the processor.
type Option func(*Processor)

// WithLogger lets callers supply a custom logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCallbackSender wires a callback destination invoked after a payment is created.
func WithCallbackSender(sender CallbackSender) Option {
	return func(p *Processor) {
		p.callback = sender
	}
}

// NewProcessor builds a Processor with sane defaults.
func NewProcessor(client PaymentClient, opts ...Option) *Processor {
	p := &Processor{
		client: client,
		logger: log.New(os.Stdout, "cashtime-lambda ", log.LstdFlags),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Handle implements the AWS Lambda handler entry point.
func (p *Processor) Handle(ctx context.Context, event PaymentEvent) (PaymentResponse, error) {
	action := strings.TrimSpace(event.Action)
	if action == "" {
		action = ActionCreate
	}

	switch action {
	case ActionCreate:
		return p.handleCreate(ctx, event)
	case ActionStatus:
		return p.handleStatus(ctx, event)
	default:
		return PaymentResponse{}, fmt.Errorf("unknown action %q", event.Action)
	}
}

func (p *Processor) handleCreate(ctx context.Context, event PaymentEvent) (PaymentResponse, error) {
	p.logger.Printf("creating pix payment amount=%.2f description=%q", event.Amount, event.Description)

	result, err := p.client.CreatePixPayment(ctx, cashtime.PaymentRequest{
		Amount:            event.Amount,
		Description:       event.Description,
		Name:              event.Name,
		Email:             event.Email,
		Phone:             event.Phone,
		CPF:               event.CPF,
		ExpirationMinutes: event.ExpirationMinutes,
	})
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("create pix payment failed: %w", err)
	}

	p.logger.Printf("pix created txid=%s cashtime_id=%s status=%s", result.TransactionID, result.ProviderID, result.Status)

	resp := PaymentResponse{Payment: result, Request: event}
	p.emitCallback(ctx, resp)
	return resp, nil
}

func (p *Processor) handleStatus(ctx context.Context, event PaymentEvent) (PaymentResponse, error) {
	if strings.TrimSpace(event.TransactionID) == "" {
		return PaymentResponse{}, errors.New("transactionId is required for status lookups")
	}

	result := p.client.CheckPaymentStatus(ctx, cashtime.ProviderID(event.TransactionID))
	if !result.Success {
		p.logger.Printf("status lookup failed id=%s error=%s", event.TransactionID, result.Error)
	} else {
		p.logger.Printf("status lookup id=%s status=%s", event.TransactionID, result.Status)
	}

	return PaymentResponse{Status: result, Request: event}, nil
}

func (p *Processor) emitCallback(ctx context.Context, resp PaymentResponse) {
	if p.callback == nil {
		return
	}
	if err := p.callback.Send(ctx, resp); err != nil {
		p.logger.Printf("callback delivery failed: %v", err)
	}
}
