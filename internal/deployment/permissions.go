package deployment

import (
	"context"
	"log/slog"
)

// PermissionWirer collects the authorization actions implied by the final
// contract set and executes them one by one. Actions run strictly
// sequentially with the single authorized signer so the signer's nonces
// stay in order.
type PermissionWirer struct {
	registry *Registry
	executor ActionExecutor
	logger   *slog.Logger
}

// NewPermissionWirer creates the post-deployment wiring stage.
func NewPermissionWirer(registry *Registry, executor ActionExecutor, logger *slog.Logger) *PermissionWirer {
	return &PermissionWirer{
		registry: registry,
		executor: executor,
		logger:   logger,
	}
}

// Wire asks every registry entry for its permission actions and executes
// them in registry order. Every entry is consulted, not just the types
// deployed this run: a type's wiring reacts to a counterpart having just
// been deployed. One action failing is recorded and does not stop the rest.
func (w *PermissionWirer) Wire(ctx context.Context, pctx PermissionContext) []PermissionResult {
	var actions []PermissionAction
	for _, s := range w.registry.All() {
		actions = append(actions, s.PermissionActions(pctx)...)
	}

	if len(actions) == 0 {
		w.logger.Debug("no permission actions required")
		return nil
	}

	w.logger.With("count", len(actions)).Info("executing permission actions")

	results := make([]PermissionResult, 0, len(actions))
	for _, action := range actions {
		result := PermissionResult{Action: action}

		txHash, err := w.executor.Execute(ctx, action)
		if err != nil {
			result.Error = err.Error()
			w.logger.
				With("target", action.Target).
				With("function", action.Function).
				With("err", err.Error()).
				Error("permission action failed")
		} else {
			result.Success = true
			result.TxHash = &txHash
			w.logger.
				With("target", action.Target).
				With("function", action.Function).
				With("tx_hash", txHash.Hex()).
				Info("permission action executed")
		}

		results = append(results, result)
	}

	return results
}
