package genai

import (
	"context"

	"github.com/hashicorp/go-multierror"
)

// BatchItem is the outcome of one prompt in a batch: either a result or
// the error that prompt produced.
type BatchItem struct {
	Result *GenerateResult
	Err    error
}

// GenerateBatch drives many independent generations sequentially. A
// failing prompt never aborts the batch; its error is recorded against
// its item and aggregated into the returned error. The returned slice
// always has one entry per prompt, in order.
func (c *Client) GenerateBatch(ctx context.Context, prompts []*PromptBuilder) ([]BatchItem, error) {
	items := make([]BatchItem, len(prompts))
	var merr *multierror.Error

	for i, prompt := range prompts {
		result, err := c.Generate(ctx, prompt)
		items[i] = BatchItem{Result: result, Err: err}
		if err != nil {
			c.logger.Warn("batch item failed", "index", i, "error", err)
			merr = multierror.Append(merr, err)
		}
	}
	return items, merr.ErrorOrNil()
}
