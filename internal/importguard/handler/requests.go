package handler

import (
	"strings"

	"tenet/internal/importguard"
	dErrors "tenet/pkg/domain-errors"
)

type createRequest struct {
	Name    string `json:"name"`
	Ticker  string `json:"ticker,omitempty"`
	Country string `json:"country,omitempty"`
}

func (r *createRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func (r *createRequest) toCandidate() importguard.Candidate {
	return importguard.Candidate{
		Name:    strings.TrimSpace(r.Name),
		Ticker:  strings.TrimSpace(r.Ticker),
		Country: strings.TrimSpace(r.Country),
	}
}

type updateRequest struct {
	Name    *string `json:"name,omitempty"`
	Ticker  *string `json:"ticker,omitempty"`
	Country *string `json:"country,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

func (r *updateRequest) Validate() error {
	if r.Name == nil && r.Ticker == nil && r.Country == nil && r.Active == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name cannot be blank")
	}
	return nil
}

func (r *updateRequest) toUpdates() importguard.Updates {
	return importguard.Updates{
		Name:    r.Name,
		Ticker:  r.Ticker,
		Country: r.Country,
		Active:  r.Active,
	}
}
