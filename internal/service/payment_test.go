package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/events"
)

// fakePaymentStore is an in-memory service.PaymentStore.
type fakePaymentStore struct {
	proofs map[uuid.UUID]*domain.PaymentProof
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{proofs: make(map[uuid.UUID]*domain.PaymentProof)}
}

func (f *fakePaymentStore) CreateProof(_ context.Context, proof *domain.PaymentProof) (*domain.PaymentProof, error) {
	// Mirrors the partial unique index on pending proofs.
	for _, existing := range f.proofs {
		if existing.OrderID == proof.OrderID && existing.Status == domain.ProofStatusPending {
			return nil, domain.ErrProofAlreadyPending
		}
	}

	p := *proof
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	f.proofs[p.ID] = &p
	return &p, nil
}

func (f *fakePaymentStore) GetProof(_ context.Context, proofID uuid.UUID) (*domain.PaymentProof, error) {
	p, ok := f.proofs[proofID]
	if !ok {
		return nil, domain.ErrProofNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePaymentStore) HasPendingProof(_ context.Context, orderID uuid.UUID) (bool, error) {
	for _, p := range f.proofs {
		if p.OrderID == orderID && p.Status == domain.ProofStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePaymentStore) ListPendingProofs(_ context.Context) ([]domain.PaymentProof, error) {
	var out []domain.PaymentProof
	for _, p := range f.proofs {
		if p.Status == domain.ProofStatusPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) ReviewProof(_ context.Context, proofID uuid.UUID, status domain.ProofStatus, reviewerID uuid.UUID, note string, at time.Time) (bool, error) {
	p, ok := f.proofs[proofID]
	if !ok || p.Status != domain.ProofStatusPending {
		return false, nil
	}
	p.Status = status
	p.ReviewedBy = reviewerID
	p.ReviewNote = note
	p.ReviewedAt = at
	return true, nil
}

// fakeStorage records puts and hands back deterministic URLs.
type fakeStorage struct {
	keys []string
}

func (f *fakeStorage) Put(_ context.Context, key string, content io.Reader, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "/uploads/" + key, nil
}

func (f *fakeStorage) Get(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeStorage) Delete(context.Context, string) error { return nil }

func (f *fakeStorage) URL(key string) string { return "/uploads/" + key }

func newPaymentFixture(t *testing.T) (*fakePaymentStore, *fakeOrderStore, *fakeStorage, *fakeNotifier, domain.PaymentService) {
	t.Helper()
	proofs := newFakePaymentStore()
	orders := newFakeOrderStore(nil)
	files := &fakeStorage{}
	notifier := &fakeNotifier{}
	svc := NewPaymentService(proofs, orders, files, events.Noop{}, notifier, testLogger())
	return proofs, orders, files, notifier, svc
}

func unpaidOrder(orders *fakeOrderStore, customerID uuid.UUID) *domain.Order {
	id := uuid.New()
	o := &domain.Order{
		ID:            id,
		OrderNumber:   "ORD-20260831-TEST",
		CustomerID:    customerID,
		Status:        domain.OrderStatusPlaced,
		PaymentStatus: domain.PaymentStatusUnpaid,
		TotalCents:    2500,
	}
	orders.orders[id] = o
	return o
}

func TestSubmitProof(t *testing.T) {
	_, orders, files, _, svc := newPaymentFixture(t)
	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)

	proof, err := svc.SubmitProof(context.Background(), domain.SubmitProofParams{
		OrderID:    order.ID,
		CustomerID: customerID,
		Reference:  "TRX-12345",
		Image:      []byte("fake image bytes"),
		ImageName:  "receipt.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProofStatusPending, proof.Status)
	assert.Equal(t, "TRX-12345", proof.Reference)
	assert.NotEmpty(t, proof.ImageURL)
	require.Len(t, files.keys, 1)
	assert.Contains(t, files.keys[0], "receipts/"+order.ID.String())
	assert.True(t, strings.HasSuffix(files.keys[0], ".jpg"))

	assert.Equal(t, domain.PaymentStatusSubmitted, orders.orders[order.ID].PaymentStatus)
}

func TestSubmitProofValidation(t *testing.T) {
	_, orders, _, _, svc := newPaymentFixture(t)
	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)

	tests := []struct {
		name    string
		params  domain.SubmitProofParams
		wantErr error
	}{
		{
			name:    "missing reference",
			params:  domain.SubmitProofParams{OrderID: order.ID, CustomerID: customerID, Image: []byte("x"), ImageName: "r.png"},
			wantErr: domain.ErrMissingReference,
		},
		{
			name:    "missing image",
			params:  domain.SubmitProofParams{OrderID: order.ID, CustomerID: customerID, Reference: "TRX"},
			wantErr: domain.ErrMissingProofImage,
		},
		{
			name:    "wrong customer",
			params:  domain.SubmitProofParams{OrderID: order.ID, CustomerID: uuid.New(), Reference: "TRX", Image: []byte("x"), ImageName: "r.png"},
			wantErr: domain.ErrNotOrderOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitProof(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubmitProofRejectsSecondPending(t *testing.T) {
	_, orders, _, _, svc := newPaymentFixture(t)
	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)
	params := domain.SubmitProofParams{
		OrderID: order.ID, CustomerID: customerID,
		Reference: "TRX", Image: []byte("x"), ImageName: "r.png",
	}

	_, err := svc.SubmitProof(context.Background(), params)
	require.NoError(t, err)

	_, err = svc.SubmitProof(context.Background(), params)
	assert.ErrorIs(t, err, ErrProofAlreadyPending)
}

// blindProofStore simulates the race window where two submissions both
// pass the pending check before either row lands.
type blindProofStore struct {
	*fakePaymentStore
}

func (b *blindProofStore) HasPendingProof(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

func TestSubmitProofConcurrentDuplicate(t *testing.T) {
	proofs := &blindProofStore{newFakePaymentStore()}
	orders := newFakeOrderStore(nil)
	svc := NewPaymentService(proofs, orders, &fakeStorage{}, events.Noop{}, &fakeNotifier{}, testLogger())

	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)
	params := domain.SubmitProofParams{
		OrderID: order.ID, CustomerID: customerID,
		Reference: "TRX", Image: []byte("x"), ImageName: "r.png",
	}

	_, err := svc.SubmitProof(context.Background(), params)
	require.NoError(t, err)

	// The pending check sees nothing, so only the unique index stands
	// between the second submission and a duplicate pending proof.
	_, err = svc.SubmitProof(context.Background(), params)
	assert.ErrorIs(t, err, ErrProofAlreadyPending)
}

func TestSubmitProofVerifiedOrderConflict(t *testing.T) {
	_, orders, _, _, svc := newPaymentFixture(t)
	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)
	orders.orders[order.ID].PaymentStatus = domain.PaymentStatusVerified

	_, err := svc.SubmitProof(context.Background(), domain.SubmitProofParams{
		OrderID: order.ID, CustomerID: customerID,
		Reference: "TRX", Image: []byte("x"), ImageName: "r.png",
	})
	require.Error(t, err)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestReviewApprove(t *testing.T) {
	proofs, orders, _, notifier, svc := newPaymentFixture(t)
	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)
	submitted, err := svc.SubmitProof(context.Background(), domain.SubmitProofParams{
		OrderID: order.ID, CustomerID: customerID,
		Reference: "TRX", Image: []byte("x"), ImageName: "r.png",
	})
	require.NoError(t, err)

	reviewerID := uuid.New()
	reviewed, err := svc.Review(context.Background(), domain.ReviewProofParams{
		ProofID:    submitted.ID,
		ReviewerID: reviewerID,
		Approve:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProofStatusApproved, reviewed.Status)
	assert.Equal(t, reviewerID, reviewed.ReviewedBy)
	assert.False(t, reviewed.ReviewedAt.IsZero())
	assert.Equal(t, domain.PaymentStatusVerified, orders.orders[order.ID].PaymentStatus)
	assert.Equal(t, domain.ProofStatusApproved, proofs.proofs[submitted.ID].Status)
	require.Len(t, notifier.results, 1)
	assert.True(t, notifier.results[0])
}

func TestReviewReject(t *testing.T) {
	_, orders, _, notifier, svc := newPaymentFixture(t)
	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)
	submitted, err := svc.SubmitProof(context.Background(), domain.SubmitProofParams{
		OrderID: order.ID, CustomerID: customerID,
		Reference: "TRX", Image: []byte("x"), ImageName: "r.png",
	})
	require.NoError(t, err)

	reviewed, err := svc.Review(context.Background(), domain.ReviewProofParams{
		ProofID:    submitted.ID,
		ReviewerID: uuid.New(),
		Approve:    false,
		Note:       "amount does not match",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProofStatusRejected, reviewed.Status)
	assert.Equal(t, "amount does not match", reviewed.ReviewNote)
	assert.Equal(t, domain.PaymentStatusRejected, orders.orders[order.ID].PaymentStatus)
	require.Len(t, notifier.results, 1)
	assert.False(t, notifier.results[0])
}

func TestReviewTwiceFails(t *testing.T) {
	_, orders, _, _, svc := newPaymentFixture(t)
	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)
	submitted, err := svc.SubmitProof(context.Background(), domain.SubmitProofParams{
		OrderID: order.ID, CustomerID: customerID,
		Reference: "TRX", Image: []byte("x"), ImageName: "r.png",
	})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), domain.ReviewProofParams{
		ProofID: submitted.ID, ReviewerID: uuid.New(), Approve: true,
	})
	require.NoError(t, err)

	_, err = svc.Review(context.Background(), domain.ReviewProofParams{
		ProofID: submitted.ID, ReviewerID: uuid.New(), Approve: false,
	})
	assert.ErrorIs(t, err, ErrProofAlreadyReviewed)
}

func TestRejectedProofAllowsResubmission(t *testing.T) {
	_, orders, _, _, svc := newPaymentFixture(t)
	customerID := uuid.New()
	order := unpaidOrder(orders, customerID)
	params := domain.SubmitProofParams{
		OrderID: order.ID, CustomerID: customerID,
		Reference: "TRX", Image: []byte("x"), ImageName: "r.png",
	}

	first, err := svc.SubmitProof(context.Background(), params)
	require.NoError(t, err)
	_, err = svc.Review(context.Background(), domain.ReviewProofParams{
		ProofID: first.ID, ReviewerID: uuid.New(), Approve: false, Note: "blurry",
	})
	require.NoError(t, err)

	second, err := svc.SubmitProof(context.Background(), params)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, domain.PaymentStatusSubmitted, orders.orders[order.ID].PaymentStatus)
}
