package generate

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultBatchParallelismConstant = 2

// GenerateBatch regenerates every target with bounded parallelism. Targets
// are isolated from one another: a failing target records its error in the
// corresponding result while the rest of the batch continues. Results are
// returned in target order.
func (service *Service) GenerateBatch(executionContext context.Context, targets []Target, parallelism int) []TargetResult {
	if parallelism <= 0 {
		parallelism = defaultBatchParallelismConstant
	}

	batchResults := make([]TargetResult, len(targets))

	workGroup, groupContext := errgroup.WithContext(executionContext)
	workGroup.SetLimit(parallelism)
	for targetIndex, target := range targets {
		targetIndex, target := targetIndex, target
		workGroup.Go(func() error {
			batchResults[targetIndex] = service.GenerateTarget(groupContext, target)
			return nil
		})
	}
	_ = workGroup.Wait()

	return batchResults
}
