package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/service"
)

// PaymentStore implements service.PaymentStore using PostgreSQL.
type PaymentStore struct {
	db *pgxpool.Pool
}

// Compile-time check that PaymentStore implements service.PaymentStore.
var _ service.PaymentStore = (*PaymentStore)(nil)

// NewPaymentStore creates a new PostgreSQL-backed payment proof store.
func NewPaymentStore(db *pgxpool.Pool) *PaymentStore {
	return &PaymentStore{db: db}
}

// CreateProof records a new pending proof of payment.
func (s *PaymentStore) CreateProof(ctx context.Context, proof *domain.PaymentProof) (*domain.PaymentProof, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO payment_proofs (order_id, customer_id, reference, image_url, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		proof.OrderID, proof.CustomerID, proof.Reference, proof.ImageURL, proof.Status,
	).Scan(&proof.ID, &proof.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrOrderNotFound
		}
		// The partial unique index on pending proofs catches two
		// submissions racing past the application-level check.
		if isUniqueViolation(err) {
			return nil, domain.ErrProofAlreadyPending
		}
		return nil, domain.Internal(err, "payment.create_proof", "failed to insert proof")
	}
	return proof, nil
}

// GetProof retrieves one proof by ID.
func (s *PaymentStore) GetProof(ctx context.Context, proofID uuid.UUID) (*domain.PaymentProof, error) {
	proof, err := s.scanProof(s.db.QueryRow(ctx, `
		SELECT id, order_id, customer_id, reference, image_url, status,
			review_note, reviewed_by, created_at, reviewed_at
		FROM payment_proofs WHERE id = $1`, proofID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProofNotFound
		}
		return nil, domain.Internal(err, "payment.get_proof", "failed to get proof")
	}
	return proof, nil
}

// HasPendingProof reports whether the order already has a proof awaiting
// review.
func (s *PaymentStore) HasPendingProof(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payment_proofs WHERE order_id = $1 AND status = $2
		)`, orderID, domain.ProofStatusPending,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ListPendingProofs returns proofs awaiting review, oldest first.
func (s *PaymentStore) ListPendingProofs(ctx context.Context) ([]domain.PaymentProof, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, customer_id, reference, image_url, status,
			review_note, reviewed_by, created_at, reviewed_at
		FROM payment_proofs
		WHERE status = $1
		ORDER BY created_at`, domain.ProofStatusPending)
	if err != nil {
		return nil, domain.Internal(err, "payment.list_pending", "failed to list proofs")
	}
	defer rows.Close()

	var proofs []domain.PaymentProof
	for rows.Next() {
		proof, err := s.scanProof(rows)
		if err != nil {
			return nil, domain.Internal(err, "payment.list_pending", "failed to scan proof")
		}
		proofs = append(proofs, *proof)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "payment.list_pending", "failed to read proofs")
	}

	return proofs, nil
}

// ReviewProof records the review outcome with an optimistic guard on pending
// status.
func (s *PaymentStore) ReviewProof(ctx context.Context, proofID uuid.UUID, status domain.ProofStatus, reviewerID uuid.UUID, note string, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE payment_proofs
		SET status = $2, reviewed_by = $3, review_note = $4, reviewed_at = $5
		WHERE id = $1 AND status = $6`,
		proofID, status, nullableUUID(reviewerID), note, at, domain.ProofStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PaymentStore) scanProof(row pgx.Row) (*domain.PaymentProof, error) {
	var (
		proof      domain.PaymentProof
		reviewedBy pgtype.UUID
		reviewedAt pgtype.Timestamptz
	)
	err := row.Scan(&proof.ID, &proof.OrderID, &proof.CustomerID, &proof.Reference,
		&proof.ImageURL, &proof.Status, &proof.ReviewNote, &reviewedBy,
		&proof.CreatedAt, &reviewedAt)
	if err != nil {
		return nil, err
	}
	proof.ReviewedBy = fromNullableUUID(reviewedBy)
	proof.ReviewedAt = fromNullableTime(reviewedAt)
	return &proof, nil
}
