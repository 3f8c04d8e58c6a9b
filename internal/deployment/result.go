package deployment

import (
	"github.com/arenaworks/arenakit/internal/contracts"
	"github.com/ethereum/go-ethereum/common"
)

// Status is the lifecycle state of one contract within a run. Items are
// created pending or already_exists at plan time, move through deploying to
// success or failed, or end up skipped when a dependency never resolved.
type Status string

const (
	StatusPending       Status = "pending"
	StatusDeploying     Status = "deploying"
	StatusSuccess       Status = "success"
	StatusFailed        Status = "failed"
	StatusSkipped       Status = "skipped"
	StatusAlreadyExists Status = "already_exists"
)

type (
	// PlanItem is one entry of the topologically ordered deployment plan.
	// DependsOn carries the full declared dependency list; entries that were
	// part of the request appear earlier in the plan.
	PlanItem struct {
		Type      contracts.ContractType
		DependsOn []contracts.ContractType
	}

	// ContractResult records the outcome for a single contract type.
	ContractResult struct {
		Type      contracts.ContractType   `json:"type"`
		Status    Status                   `json:"status"`
		Address   *common.Address          `json:"address,omitempty"`
		TxHash    *common.Hash             `json:"txHash,omitempty"`
		Error     string                   `json:"error,omitempty"`
		DependsOn []contracts.ContractType `json:"dependsOn"`
	}

	// PermissionResult records the outcome of a single authorization call.
	PermissionResult struct {
		Action      PermissionAction `json:"action"`
		Success     bool             `json:"success"`
		TxHash      *common.Hash     `json:"txHash,omitempty"`
		Error       string           `json:"error,omitempty"`
	}

	// Result aggregates one orchestration run. It is returned even when the
	// run failed; Success is the only flag callers need to branch on.
	Result struct {
		Success           bool                                     `json:"success"`
		Message           string                                   `json:"message"`
		ChainID           uint64                                   `json:"chainId"`
		Results           []ContractResult                         `json:"results"`
		DeployedContracts map[contracts.ContractType]common.Address `json:"deployedContracts"`
		TotalDeployed     int                                      `json:"totalDeployed"`
		TotalFailed       int                                      `json:"totalFailed"`
		TotalExisting     int                                      `json:"totalExisting"`
		PermissionResults []PermissionResult                       `json:"permissionResults,omitempty"`
	}
)

// skippedContracts counts items whose dependencies never resolved.
func (r *Result) skippedContracts() int {
	skipped := 0
	for _, cr := range r.Results {
		if cr.Status == StatusSkipped {
			skipped++
		}
	}
	return skipped
}

// permissionFailures counts failed authorization calls in the result.
func (r *Result) permissionFailures() int {
	failures := 0
	for _, pr := range r.PermissionResults {
		if !pr.Success {
			failures++
		}
	}
	return failures
}
