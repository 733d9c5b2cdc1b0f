package usage

import embeddinguc "github.com/kailas-cloud/candidex/internal/usecase/embedding"

// BudgetReader provides read-only access to token budget state.
type BudgetReader interface {
	Snapshot() embeddinguc.BudgetSnapshot
}
