//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"devhub/domain"
	apperrors "devhub/errors"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type ISessionRepository interface {
	CreateSession(name string, code domain.SessionCode, ownerID string) (Session, error)
	GetSessionByCode(code domain.SessionCode) (Session, error)
}

// Session is the durable record behind a join code. Live room
// membership is not stored here: rooms are a derived view over the
// connection registry, this record only anchors chat persistence.
type Session struct {
	ID        string
	Name      string
	Code      domain.SessionCode
	OwnerID   string
	CreatedAt time.Time
}

type SessionRepository struct {
	db *badger.DB
}

func NewSessionRepository(db *badger.DB) ISessionRepository {
	return &SessionRepository{db: db}
}

func sessionKey(code domain.SessionCode) []byte {
	return []byte("session:" + string(code))
}

func (s *SessionRepository) CreateSession(name string, code domain.SessionCode, ownerID string) (Session, error) {
	record := Session{
		ID:        uuid.NewString(),
		Name:      name,
		Code:      code,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	data, err := cbor.Marshal(record)
	if err != nil {
		return Session{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(code)
		if _, err := txn.Get(key); err == nil {
			return apperrors.ErrSessionCodeTaken
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return Session{}, err
	}
	return record, nil
}

func (s *SessionRepository) GetSessionByCode(code domain.SessionCode) (Session, error) {
	var record Session

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(code))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Session{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return record, nil
}
