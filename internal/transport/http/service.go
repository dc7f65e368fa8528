// Package http contains the HTTP transport layer: request decoding,
// validation and response shaping for the statement API.
package http

import (
	"context"

	"ibkrcli/pkg/contracts/domain"
)

// StatementProcessor is the service surface the transport depends on.
type StatementProcessor interface {
	ProcessContent(ctx context.Context, csvContent, subject string) (*domain.Result, error)
}
