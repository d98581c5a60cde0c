package storefront

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
	"github.com/tavolaworks/tavola/internal/handler"
	"github.com/tavolaworks/tavola/internal/middleware"
	"github.com/tavolaworks/tavola/internal/telemetry"
)

// maxProofImageSize caps receipt uploads at 5 MB.
const maxProofImageSize = 5 << 20

// PaymentHandler accepts payment proof submissions from customers.
type PaymentHandler struct {
	payments domain.PaymentService
	logger   *slog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(payments domain.PaymentService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{payments: payments, logger: logger}
}

// SubmitProof handles POST /orders/{id}/payment-proof
//
// Multipart form with a "reference" field (bank transfer reference) and an
// "image" file (the receipt). The platform records the proof for manual
// review; it never talks to a payment processor.
func (h *PaymentHandler) SubmitProof(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handler.Error(w, r, domain.Unauthorized("payment.submit", "sign in to submit payment proof"))
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.Error(w, r, domain.Invalid("payment.submit", "invalid order id"))
		return
	}

	if err := r.ParseMultipartForm(maxProofImageSize); err != nil {
		handler.Error(w, r, domain.Invalid("payment.submit", "invalid multipart form"))
		return
	}

	image, name, err := readProofImage(r)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	proof, err := h.payments.SubmitProof(r.Context(), domain.SubmitProofParams{
		OrderID:    orderID,
		CustomerID: principal.UserID,
		Reference:  r.FormValue("reference"),
		Image:      image,
		ImageName:  name,
	})
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ProofsSubmitted.Inc()
	}

	handler.JSON(w, http.StatusCreated, Proof(proof))
}

// readProofImage pulls the receipt file out of the form. A missing file is
// reported through the domain error so the service layer's contract holds
// for direct callers too.
func readProofImage(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", domain.ErrMissingProofImage
		}
		return nil, "", domain.Invalid("payment.submit", "unreadable receipt image")
	}
	defer file.Close()

	if header.Size > maxProofImageSize {
		return nil, "", domain.Errorf(domain.ETOOLARGE, "payment.submit", "receipt image exceeds %d bytes", maxProofImageSize)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxProofImageSize+1))
	if err != nil {
		return nil, "", domain.Internal(err, "payment.submit", "failed to read receipt image")
	}
	if len(data) > maxProofImageSize {
		return nil, "", domain.Errorf(domain.ETOOLARGE, "payment.submit", "receipt image exceeds %d bytes", maxProofImageSize)
	}
	return data, header.Filename, nil
}

type proofViewModel struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	Reference  string    `json:"reference"`
	ImageURL   string    `json:"image_url"`
	Status     string    `json:"status"`
	ReviewNote string    `json:"review_note,omitempty"`
	ReviewedAt string    `json:"reviewed_at,omitempty"`
	CreatedAt  string    `json:"created_at"`
}

// Proof converts a payment proof to its JSON view. Exported because the
// admin review endpoints render the same shape.
func Proof(p *domain.PaymentProof) proofViewModel {
	view := proofViewModel{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Reference:  p.Reference,
		ImageURL:   p.ImageURL,
		Status:     string(p.Status),
		ReviewNote: p.ReviewNote,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !p.ReviewedAt.IsZero() {
		view.ReviewedAt = p.ReviewedAt.UTC().Format(time.RFC3339)
	}
	return view
}
