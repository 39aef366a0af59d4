package ingest

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// maxSplitDepth bounds batch halving. A batch that still exceeds the budget
// after this many halvings is down to single chunks and is submitted as-is.
const maxSplitDepth = 16

// TokenBudgeter estimates the token cost of text before it is submitted to
// the embedding provider. It is a pre-flight guard that lowers the chance of
// a rate-limit rejection; the governor remains the reactive backstop.
type TokenBudgeter struct {
	encoding *tiktoken.Tiktoken
	logger   *slog.Logger
}

// NewTokenBudgeter creates a budgeter. The cl100k_base encoding is fetched
// lazily by tiktoken and may be unavailable offline; estimation then falls
// back to the length/4 heuristic.
func NewTokenBudgeter() *TokenBudgeter {
	logger := slog.Default().With("component", "token-budgeter")

	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tiktoken encoding unavailable, using length heuristic", "err", err)
		encoding = nil
	}

	return &TokenBudgeter{
		encoding: encoding,
		logger:   logger,
	}
}

// EstimateTokens returns the estimated token count of one text.
func (b *TokenBudgeter) EstimateTokens(text string) int {
	if b.encoding != nil {
		return len(b.encoding.Encode(text, nil, nil))
	}
	// Rough heuristic: one token per ~4 characters of English-like text.
	return len(text) / 4
}

// EstimateBatch returns the estimated token count of a batch.
func (b *TokenBudgeter) EstimateBatch(texts []string) int {
	total := 0
	for _, text := range texts {
		total += b.EstimateTokens(text)
	}
	return total
}

// FitsBudget reports whether a batch's estimated tokens stay under the
// per-minute target. A target <= 0 disables the check.
func (b *TokenBudgeter) FitsBudget(texts []string, tpmTarget int) bool {
	if tpmTarget <= 0 {
		return true
	}
	return b.EstimateBatch(texts) <= tpmTarget
}

// SplitToBudget partitions a batch into sub-batches that each fit the target,
// halving oversized batches. Halving uses an explicit work queue with a depth
// guard; a single chunk over the target cannot be split further and is
// returned as its own batch.
func (b *TokenBudgeter) SplitToBudget(texts []string, tpmTarget int) [][]string {
	if len(texts) == 0 {
		return nil
	}
	if b.FitsBudget(texts, tpmTarget) {
		return [][]string{texts}
	}

	type pending struct {
		texts []string
		depth int
	}

	var fitted [][]string
	queue := []pending{{texts: texts}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if b.FitsBudget(item.texts, tpmTarget) || len(item.texts) == 1 || item.depth >= maxSplitDepth {
			if !b.FitsBudget(item.texts, tpmTarget) {
				b.logger.Warn("batch still over budget after splitting",
					"chunks", len(item.texts),
					"estimated_tokens", b.EstimateBatch(item.texts),
					"tpm_target", tpmTarget)
			}
			fitted = append(fitted, item.texts)
			continue
		}

		// Prepend the halves so sub-batches come out in original chunk order.
		mid := len(item.texts) / 2
		queue = append([]pending{
			{texts: item.texts[:mid], depth: item.depth + 1},
			{texts: item.texts[mid:], depth: item.depth + 1},
		}, queue...)
	}
	return fitted
}
