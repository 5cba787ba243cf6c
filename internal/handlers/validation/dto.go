package validation

import (
	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

// Request bodies. A missing options object enables every check; a present
// one is taken as-is, so omitted flags read as false.

type creationRequest struct {
	Batch   *domain.PayoutBatch    `json:"batch"`
	Options *ports.CreationOptions `json:"options"`
}

type processingRequest struct {
	Batch   *domain.PayoutBatch      `json:"batch"`
	Options *ports.ProcessingOptions `json:"options"`
}

type complianceRequest struct {
	Batch         *domain.PayoutBatch      `json:"batch"`
	Jurisdictions []string                 `json:"jurisdictions"`
	Options       *ports.ComplianceOptions `json:"options"`
}

// errorResponse is the body of every non-200 reply
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
