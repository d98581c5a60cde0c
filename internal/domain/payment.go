package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProofStatus is the review state of one submitted proof of payment.
type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "pending"
	ProofStatusApproved ProofStatus = "approved"
	ProofStatusRejected ProofStatus = "rejected"
)

// PaymentProof records a manually-submitted proof of payment for an order:
// a bank/transfer reference plus an uploaded receipt image. The platform
// never talks to a payment gateway; an admin reviews the proof by hand.
type PaymentProof struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Reference  string
	ImageURL   string
	Status     ProofStatus
	ReviewNote string
	ReviewedBy uuid.UUID // zero UUID until reviewed
	CreatedAt  time.Time
	ReviewedAt time.Time
}

// PaymentService records and reviews proofs of payment.
type PaymentService interface {
	// SubmitProof stores the receipt image and records a pending proof for
	// the order. The order moves to PaymentStatusSubmitted.
	SubmitProof(ctx context.Context, params SubmitProofParams) (*PaymentProof, error)

	// GetProof retrieves one proof.
	GetProof(ctx context.Context, proofID uuid.UUID) (*PaymentProof, error)

	// ListPending returns proofs awaiting admin review, oldest first.
	ListPending(ctx context.Context) ([]PaymentProof, error)

	// Review approves or rejects a pending proof and updates the order's
	// payment status accordingly.
	Review(ctx context.Context, params ReviewProofParams) (*PaymentProof, error)
}

// SubmitProofParams contains parameters for submitting a proof of payment.
type SubmitProofParams struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Reference  string
	Image      []byte
	ImageName  string
}

// ReviewProofParams contains parameters for an admin proof review.
type ReviewProofParams struct {
	ProofID    uuid.UUID
	ReviewerID uuid.UUID
	Approve    bool
	Note       string
}

// Payment-related domain errors.
var (
	ErrProofNotFound        = &Error{Code: ENOTFOUND, Message: "Payment proof not found"}
	ErrProofAlreadyReviewed = &Error{Code: ECONFLICT, Message: "Payment proof already reviewed"}
	ErrProofAlreadyPending  = &Error{Code: ECONFLICT, Message: "A proof for this order is already awaiting review"}
	ErrMissingReference     = &Error{Code: EINVALID, Message: "Payment reference is required"}
	ErrMissingProofImage    = &Error{Code: EINVALID, Message: "Receipt image is required"}
)
