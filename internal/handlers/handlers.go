package handlers

import (
	"github.com/fitcore/membership-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Contract   *ContractHandler
	Suspension *SuspensionHandler
	Summary    *SummaryHandler
	Audit      *AuditHandler
	Job        *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(),
		Contract:   NewContractHandler(svcs.Contract),
		Suspension: NewSuspensionHandler(svcs.Suspension),
		Summary:    NewSummaryHandler(svcs.Summary, svcs.Export),
		Audit:      NewAuditHandler(svcs.Audit),
		Job:        NewJobHandler(svcs.Job),
	}
}
