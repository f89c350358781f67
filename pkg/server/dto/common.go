package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/cogito/pkg/types"
)

// Validation errors
var (
	ErrEmptyGraph     = errors.New("graph cannot be empty")
	ErrEmptyGraphID   = errors.New("graph_id cannot be empty")
	ErrEmptyTarget    = errors.New("target cannot be empty")
	ErrGraphIDTooLong = errors.New("graph_id exceeds maximum length (256)")
	ErrTooManyNodes   = errors.New("node count exceeds maximum (100000)")
)

// MaxFieldLengths defines maximum sizes for request fields to prevent abuse
const (
	MaxGraphIDLength = 256
	MaxNodeCount     = 100000
)

// GraphPayload wraps the serialized graph carried by engine requests.
type GraphPayload struct {
	Graph types.Document `json:"graph" binding:"required"`
}

// Validate performs validation on GraphPayload
func (p *GraphPayload) Validate() error {
	if len(p.Graph.Nodes) == 0 {
		return ErrEmptyGraph
	}
	if len(p.Graph.Nodes) > MaxNodeCount {
		return ErrTooManyNodes
	}
	return nil
}

// ValidateGraphID checks a graph id taken from a request body or URL.
func ValidateGraphID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyGraphID
	}
	if len(id) > MaxGraphIDLength {
		return ErrGraphIDTooLong
	}
	return nil
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
