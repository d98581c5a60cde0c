package service

import (
	"github.com/tavolaworks/tavola/internal/domain"
)

// Cart errors
var (
	ErrCartNotFound     = domain.Errorf(domain.ENOTFOUND, "", "Cart not found")
	ErrCartLineNotFound = domain.Errorf(domain.ENOTFOUND, "", "Cart line not found")
	ErrInvalidQuantity  = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
)

// Order errors
var (
	ErrOrderNotFound        = domain.ErrOrderNotFound
	ErrEmptyCart            = domain.ErrEmptyCart
	ErrCartAlreadyConverted = domain.ErrCartAlreadyConverted
	ErrInvalidOrderType     = domain.Errorf(domain.EINVALID, "", "Unknown order type")
)

// Payment errors
var (
	ErrProofNotFound        = domain.ErrProofNotFound
	ErrProofAlreadyReviewed = domain.ErrProofAlreadyReviewed
	ErrProofAlreadyPending  = domain.ErrProofAlreadyPending
)
