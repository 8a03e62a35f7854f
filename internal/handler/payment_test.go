package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/berniyo/cashtime-lambda/internal/cashtime"
)

type fakeClient struct {
	createFn func(ctx context.Context, req cashtime.PaymentRequest) (*cashtime.PaymentResult, error)
	statusFn func(ctx context.Context, id cashtime.ProviderID) *cashtime.StatusResult
}

func (f *fakeClient) CreatePixPayment(ctx context.Context, req cashtime.PaymentRequest) (*cashtime.PaymentResult, error) {
	return f.createFn(ctx, req)
}

func (f *fakeClient) CheckPaymentStatus(ctx context.Context, id cashtime.ProviderID) *cashtime.StatusResult {
	return f.statusFn(ctx, id)
}

type fakeCallback struct {
	calls []PaymentResponse
	err   error
}

func (f *fakeCallback) Send(ctx context.Context, payload PaymentResponse) error {
	f.calls = append(f.calls, payload)
	return f.err
}

func TestProcessorHandleCreateSuccess(t *testing.T) {
	client := &fakeClient{
		createFn: func(ctx context.Context, req cashtime.PaymentRequest) (*cashtime.PaymentResult, error) {
			require.Equal(t, 19.90, req.Amount)
			require.Equal(t, "Regularização", req.Description)
			return &cashtime.PaymentResult{
				Success:       true,
				TransactionID: "CASHTIME1700000000ABCD1234",
				ProviderID:    "ct_123",
				Status:        "pending",
			}, nil
		},
	}

	cb := &fakeCallback{}
	processor := NewProcessor(client, WithCallbackSender(cb))

	event := PaymentEvent{Action: ActionCreate, Amount: 19.90, Description: "Regularização"}
	resp, err := processor.Handle(context.Background(), event)
	require.NoError(t, err)
	require.NotNil(t, resp.Payment)
	require.Nil(t, resp.Status)
	require.Equal(t, cashtime.ProviderID("ct_123"), resp.Payment.ProviderID)
	require.Equal(t, event, resp.Request)
	require.Len(t, cb.calls, 1)
	require.Equal(t, resp, cb.calls[0])
}

func TestProcessorHandleDefaultsToCreate(t *testing.T) {
	created := false
	client := &fakeClient{
		createFn: func(ctx context.Context, req cashtime.PaymentRequest) (*cashtime.PaymentResult, error) {
			created = true
			return &cashtime.PaymentResult{Success: true}, nil
		},
	}

	processor := NewProcessor(client)

	_, err := processor.Handle(context.Background(), PaymentEvent{Amount: 10, Description: "Teste"})
	require.NoError(t, err)
	require.True(t, created)
}

func TestProcessorHandleCreateFailure(t *testing.T) {
	client := &fakeClient{
		createFn: func(ctx context.Context, req cashtime.PaymentRequest) (*cashtime.PaymentResult, error) {
			return nil, &cashtime.ValidationError{Field: "amount"}
		},
	}

	cb := &fakeCallback{}
	processor := NewProcessor(client, WithCallbackSender(cb))

	_, err := processor.Handle(context.Background(), PaymentEvent{Description: "Sem valor"})
	var vErr *cashtime.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "amount", vErr.Field)
	require.Empty(t, cb.calls)
}

func TestProcessorHandleStatus(t *testing.T) {
	client := &fakeClient{
		statusFn: func(ctx context.Context, id cashtime.ProviderID) *cashtime.StatusResult {
			require.Equal(t, cashtime.ProviderID("ct_123"), id)
			return &cashtime.StatusResult{Success: true, ProviderID: id, Status: "paid", Amount: 19.90}
		},
	}

	cb := &fakeCallback{}
	processor := NewProcessor(client, WithCallbackSender(cb))

	resp, err := processor.Handle(context.Background(), PaymentEvent{Action: ActionStatus, TransactionID: "ct_123"})
	require.NoError(t, err)
	require.Nil(t, resp.Payment)
	require.NotNil(t, resp.Status)
	require.Equal(t, "paid", resp.Status.Status)
	require.Empty(t, cb.calls)
}

func TestProcessorHandleStatusFailureIsNotAnError(t *testing.T) {
	client := &fakeClient{
		statusFn: func(ctx context.Context, id cashtime.ProviderID) *cashtime.StatusResult {
			return &cashtime.StatusResult{Error: "transaction not found"}
		},
	}

	processor := NewProcessor(client)

	resp, err := processor.Handle(context.Background(), PaymentEvent{Action: ActionStatus, TransactionID: "missing"})
	require.NoError(t, err)
	require.False(t, resp.Status.Success)
	require.Equal(t, "transaction not found", resp.Status.Error)
}

func TestProcessorHandleStatusRequiresTransactionID(t *testing.T) {
	processor := NewProcessor(&fakeClient{})

	_, err := processor.Handle(context.Background(), PaymentEvent{Action: ActionStatus})
	require.EqualError(t, err, "transactionId is required for status lookups")
}

func TestProcessorHandleUnknownAction(t *testing.T) {
	processor := NewProcessor(&fakeClient{})

	_, err := processor.Handle(context.Background(), PaymentEvent{Action: "refund"})
	require.EqualError(t, err, `unknown action "refund"`)
}

func TestProcessorToleratesCallbackFailure(t *testing.T) {
	client := &fakeClient{
		createFn: func(ctx context.Context, req cashtime.PaymentRequest) (*cashtime.PaymentResult, error) {
			return &cashtime.PaymentResult{Success: true}, nil
		},
	}

	cb := &fakeCallback{err: errors.New("endpoint down")}
	processor := NewProcessor(client, WithCallbackSender(cb))

	resp, err := processor.Handle(context.Background(), PaymentEvent{Amount: 10, Description: "Teste"})
	require.NoError(t, err)
	require.NotNil(t, resp.Payment)
	require.Len(t, cb.calls, 1)
}
