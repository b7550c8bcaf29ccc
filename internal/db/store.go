package db

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/ttmgo/internal/store"
)

// Store объединяет репозитории контента в store.Store.
type Store struct {
	*TreeRepository
	*LoadoutRepository
	*BuildRepository
	*WorkspaceRepository
}

var _ store.Store = (*Store)(nil)

// NewStore создаёт Store поверх пула.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		TreeRepository:      NewTreeRepository(pool),
		LoadoutRepository:   NewLoadoutRepository(pool),
		BuildRepository:     NewBuildRepository(pool),
		WorkspaceRepository: NewWorkspaceRepository(pool),
	}
}
