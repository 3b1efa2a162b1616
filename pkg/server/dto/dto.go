// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/ktbn/pkg/types"
)

// CreateNetworkRequest creates a new named template.
type CreateNetworkRequest struct {
	ID        string `json:"id" binding:"required"`
	Horizon   int    `json:"horizon" binding:"required"`
	Separator string `json:"separator,omitempty"`
}

// Validate performs validation on CreateNetworkRequest.
func (r *CreateNetworkRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("id cannot be empty")
	}
	if r.Horizon < 1 {
		return errors.New("horizon must be at least 1")
	}
	return nil
}

// AddVariableRequest registers one atemporal variable.
type AddVariableRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	DomainSize  int      `json:"domain_size,omitempty"`
}

// Validate performs validation on AddVariableRequest.
func (r *AddVariableRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if len(r.Labels) == 0 && r.DomainSize < 2 {
		return errors.New("either labels or a domain_size of at least 2 is required")
	}
	return nil
}

// ArcRequest adds or removes one arc.
type ArcRequest struct {
	Tail types.UserKey `json:"tail" binding:"required"`
	Head types.UserKey `json:"head" binding:"required"`
}

// FillCPTRequest overwrites one table's values positionally.
type FillCPTRequest struct {
	Values []float64 `json:"values" binding:"required"`
}

// UnrollRequest extends the template to the given number of slices.
type UnrollRequest struct {
	Slices int `json:"slices" binding:"required"`
}

// NetworkResponse describes one registered network.
type NetworkResponse struct {
	ID        string   `json:"id"`
	Horizon   int      `json:"horizon"`
	Separator string   `json:"separator"`
	Variables []string `json:"variables"`
}

// ArcsResponse lists arcs both structured and printable.
type ArcsResponse struct {
	Arcs    []types.Arc `json:"arcs"`
	Strings []string    `json:"strings"`
}

// CPTResponse returns one table.
type CPTResponse struct {
	Variable types.UserKey `json:"variable"`
	Values   []float64     `json:"values"`
	Rendered string        `json:"rendered"`
}

// UnrollResponse summarizes an unrolled flat net.
type UnrollResponse struct {
	Slices int         `json:"slices"`
	Nodes  []string    `json:"nodes"`
	Arcs   []types.Arc `json:"arcs"`
}

// ErrorResponse carries an error message and category.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
