package store

import "github.com/yourorg/scaffold/pkg/types"

type Store interface {
	CreateSession(source, pageName, entityName, kind string, fieldCount int) (*types.Session, error)
	GetSession(id string) (*types.Session, error)
	UpdateSessionStatus(id, status string) error
	ListSessions() ([]types.Session, error)
	DeleteSession(id string) error

	SaveFragments(sessionID string, fragments []types.Fragment) error
	GetFragments(sessionID string) ([]types.Fragment, error)

	Close() error
}
