package interfaces

import (
	"iter"

	"github.com/sheikh-saqib/personal-ledger/internal/models"
)

// AccountStore holds the live accounts of one ledger.
type AccountStore interface {
	NextID() string
	Insert(account models.Account) error
	Get(id string) (models.Account, error)
	Update(account models.Account) error
	Remove(id string) error
	List() iter.Seq[models.Account]
	Len() int
}
