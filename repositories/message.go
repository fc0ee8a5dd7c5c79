//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	AppendMessage(message DiskMessage) error
	GetMessages(sessionID string, cursor *string) ([]DiskMessage, *string, error)
}

// DiskMessage is the durable copy of a chat message, linking it to the
// session and user rows it was written under.
type DiskMessage struct {
	ID        uuid.UUID
	SessionID string
	UserID    string
	Content   string
	At        time.Time
}

// diskRecord is the CBOR shape actually written to disk.
type diskRecord struct {
	ID        string `cbor:"1,keyasint"`
	SessionID string `cbor:"2,keyasint"`
	UserID    string `cbor:"3,keyasint"`
	Content   string `cbor:"4,keyasint"`
	At        int64  `cbor:"5,keyasint"`
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// AppendMessage persists a chat message in BadgerDB.
// The key is formatted as "msg:{session_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two
//     messages arrive at the same nanosecond.
func (m MessageRepository) AppendMessage(message DiskMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.SessionID,
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := cbor.Marshal(fromDiskMessage(message))
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages retrieves messages for a session using a reverse prefix
// scan, newest first. Thanks to the padded timestamp in the key the scan
// order is the time order. It stops once the configured limitMessages is
// reached and returns an opaque cursor to resume from.
func (m MessageRepository) GetMessages(sessionID string, cursor *string) ([]DiskMessage, *string, error) {
	var rawMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", sessionID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past any possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(rawMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			// Memorize the cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				rawMessages = append(rawMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var diskMessages []DiskMessage
	for _, b := range rawMessages {
		var record diskRecord
		if err = cbor.Unmarshal(b, &record); err != nil {
			return nil, nil, err
		}
		message, err := toDiskMessage(record)
		if err != nil {
			return nil, nil, err
		}
		diskMessages = append(diskMessages, message)
	}
	return diskMessages, lo.ToPtr(lastKey), nil
}

func fromDiskMessage(message DiskMessage) diskRecord {
	return diskRecord{
		ID:        message.ID.String(),
		SessionID: message.SessionID,
		UserID:    message.UserID,
		Content:   message.Content,
		At:        message.At.UnixNano(),
	}
}

func toDiskMessage(record diskRecord) (DiskMessage, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return DiskMessage{}, err
	}
	return DiskMessage{
		ID:        parsedID,
		SessionID: record.SessionID,
		UserID:    record.UserID,
		Content:   record.Content,
		At:        time.Unix(0, record.At).UTC(),
	}, nil
}
