package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/events"
	"github.com/tavolaworks/tavola/internal/storage"
)

// PaymentStore is the persistence boundary for payment proofs.
type PaymentStore interface {
	CreateProof(ctx context.Context, proof *domain.PaymentProof) (*domain.PaymentProof, error)
	GetProof(ctx context.Context, proofID uuid.UUID) (*domain.PaymentProof, error)
	HasPendingProof(ctx context.Context, orderID uuid.UUID) (bool, error)
	ListPendingProofs(ctx context.Context) ([]domain.PaymentProof, error)

	// ReviewProof records the review outcome with an optimistic guard on
	// pending status. Returns false when the proof was already reviewed.
	ReviewProof(ctx context.Context, proofID uuid.UUID, status domain.ProofStatus, reviewerID uuid.UUID, note string, at time.Time) (bool, error)
}

type paymentService struct {
	store     PaymentStore
	orders    OrderStore
	files     storage.Storage
	publisher events.Publisher
	notifier  Notifier
	logger    *slog.Logger
}

// NewPaymentService creates a new PaymentService instance.
func NewPaymentService(store PaymentStore, orders OrderStore, files storage.Storage, publisher events.Publisher, notifier Notifier, logger *slog.Logger) domain.PaymentService {
	return &paymentService{
		store:     store,
		orders:    orders,
		files:     files,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// SubmitProof stores the receipt image and records a pending proof.
// The platform records proof of payment; it never charges anything.
func (s *paymentService) SubmitProof(ctx context.Context, params domain.SubmitProofParams) (*domain.PaymentProof, error) {
	if params.Reference == "" {
		return nil, domain.ErrMissingReference
	}
	if len(params.Image) == 0 {
		return nil, domain.ErrMissingProofImage
	}

	order, err := s.orders.GetOrder(ctx, params.OrderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != params.CustomerID {
		return nil, domain.ErrNotOrderOwner
	}
	if order.PaymentStatus == domain.PaymentStatusVerified {
		return nil, domain.Conflict("payment.submit", "order payment is already verified")
	}

	pending, err := s.store.HasPendingProof(ctx, params.OrderID)
	if err != nil {
		return nil, domain.Internal(err, "payment.submit", "failed to check pending proofs")
	}
	if pending {
		return nil, ErrProofAlreadyPending
	}

	contentType := mime.TypeByExtension(filepath.Ext(params.ImageName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := fmt.Sprintf("receipts/%s/%s%s", params.OrderID, uuid.New(), filepath.Ext(params.ImageName))

	imageURL, err := s.files.Put(ctx, key, bytes.NewReader(params.Image), contentType)
	if err != nil {
		return nil, domain.Internal(err, "payment.submit", "failed to store receipt image")
	}

	proof, err := s.store.CreateProof(ctx, &domain.PaymentProof{
		OrderID:    params.OrderID,
		CustomerID: params.CustomerID,
		Reference:  params.Reference,
		ImageURL:   imageURL,
		Status:     domain.ProofStatusPending,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateOrderPaymentStatus(ctx, order.ID, domain.PaymentStatusSubmitted); err != nil {
		return nil, domain.Internal(err, "payment.submit", "failed to update order payment status")
	}

	s.publish(ctx, events.SubjectPaymentSubmitted, events.PaymentEvent{
		EventType: events.EventPaymentSubmitted,
		ProofID:   proof.ID,
		OrderID:   order.ID,
		Status:    proof.Status,
		Timestamp: time.Now().UTC(),
	})

	return proof, nil
}

// GetProof retrieves one proof.
func (s *paymentService) GetProof(ctx context.Context, proofID uuid.UUID) (*domain.PaymentProof, error) {
	return s.store.GetProof(ctx, proofID)
}

// ListPending returns proofs awaiting admin review, oldest first.
func (s *paymentService) ListPending(ctx context.Context) ([]domain.PaymentProof, error) {
	return s.store.ListPendingProofs(ctx)
}

// Review approves or rejects a pending proof, updates the order's payment
// status, and notifies the customer of the outcome.
func (s *paymentService) Review(ctx context.Context, params domain.ReviewProofParams) (*domain.PaymentProof, error) {
	proof, err := s.store.GetProof(ctx, params.ProofID)
	if err != nil {
		return nil, err
	}
	if proof.Status != domain.ProofStatusPending {
		return nil, ErrProofAlreadyReviewed
	}

	status := domain.ProofStatusRejected
	paymentStatus := domain.PaymentStatusRejected
	if params.Approve {
		status = domain.ProofStatusApproved
		paymentStatus = domain.PaymentStatusVerified
	}

	now := time.Now().UTC()
	reviewed, err := s.store.ReviewProof(ctx, proof.ID, status, params.ReviewerID, params.Note, now)
	if err != nil {
		return nil, domain.Internal(err, "payment.review", "failed to record review")
	}
	if !reviewed {
		return nil, ErrProofAlreadyReviewed
	}

	if err := s.orders.UpdateOrderPaymentStatus(ctx, proof.OrderID, paymentStatus); err != nil {
		return nil, domain.Internal(err, "payment.review", "failed to update order payment status")
	}

	proof.Status = status
	proof.ReviewedBy = params.ReviewerID
	proof.ReviewNote = params.Note
	proof.ReviewedAt = now

	s.publish(ctx, events.SubjectPaymentReviewed, events.PaymentEvent{
		EventType: events.EventPaymentReviewed,
		ProofID:   proof.ID,
		OrderID:   proof.OrderID,
		Status:    status,
		Timestamp: now,
	})

	if order, err := s.orders.GetOrder(ctx, proof.OrderID); err == nil {
		if err := s.notifier.SendPaymentResult(ctx, order, params.Approve, params.Note); err != nil {
			s.logger.Warn("payment result email failed", "order", order.OrderNumber, "error", err)
		}
	}

	return proof, nil
}

func (s *paymentService) publish(ctx context.Context, subject string, event any) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.logger.Warn("event publish failed", "subject", subject, "error", err)
	}
}
