package interfaces

import (
	"context"

	"github.com/sheikh-saqib/personal-ledger/internal/models"
)

// SnapshotGateway persists the complete account list as one unit.
type SnapshotGateway interface {
	Save(ctx context.Context, accounts []models.Account) error
	Load(ctx context.Context) ([]models.Account, error)
}
