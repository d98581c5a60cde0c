package admin

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
	"github.com/tavolaworks/tavola/internal/handler/storefront"
	"github.com/tavolaworks/tavola/internal/middleware"
	"github.com/tavolaworks/tavola/internal/telemetry"
)

// PaymentHandler reviews submitted payment proofs.
type PaymentHandler struct {
	payments domain.PaymentService
	logger   *slog.Logger
}

// NewPaymentHandler creates a new admin payment handler.
func NewPaymentHandler(payments domain.PaymentService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{payments: payments, logger: logger}
}

// ListPending handles GET /admin/payments/pending
//
// Proofs awaiting review, oldest first.
func (h *PaymentHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	proofs, err := h.payments.ListPending(r.Context())
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	views := make([]any, 0, len(proofs))
	for i := range proofs {
		views = append(views, storefront.Proof(&proofs[i]))
	}

	handler.JSON(w, http.StatusOK, map[string]any{"proofs": views})
}

// Get handles GET /admin/payments/{id}
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	proofID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.get_proof", "invalid proof id"))
		return
	}

	proof, err := h.payments.GetProof(r.Context(), proofID)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	handler.JSON(w, http.StatusOK, storefront.Proof(proof))
}

// reviewRequest approves or rejects a pending proof.
type reviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note" validate:"max=1000"`
}

// Review handles POST /admin/payments/{id}/review
//
// Approval marks the order verified; rejection sends it back to the
// customer for another attempt.
func (h *PaymentHandler) Review(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handler.Error(w, r, domain.Unauthorized("admin.review_proof", "authentication required"))
		return
	}

	proofID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("admin.review_proof", "invalid proof id"))
		return
	}

	var req reviewRequest
	if err := handler.Decode(r, &req); err != nil {
		handler.Error(w, r, err)
		return
	}

	proof, err := h.payments.Review(r.Context(), domain.ReviewProofParams{
		ProofID:    proofID,
		ReviewerID: principal.UserID,
		Approve:    req.Approve,
		Note:       req.Note,
	})
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	if telemetry.Business != nil {
		outcome := "rejected"
		if req.Approve {
			outcome = "approved"
		}
		telemetry.Business.ProofsReviewed.WithLabelValues(outcome).Inc()
	}

	handler.JSON(w, http.StatusOK, storefront.Proof(proof))
}
