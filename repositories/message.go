package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message ArchivedMessage) error
	GetMessages(cursor *string) ([]ArchivedMessage, *string, error)
}

// ArchivedMessage is the structured record kept for every routed line.
type ArchivedMessage struct {
	ID     uuid.UUID `json:"id"`
	Kind   string    `json:"kind"`
	Sender string    `json:"sender"`
	Target string    `json:"target,omitempty"`
	Line   string    `json:"line"`
	At     time.Time `json:"at"`
}

type MessageRepository struct {
	db        *badger.DB
	log       *slog.Logger
	pageLimit *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, pageLimit *int) MessageRepository {
	return MessageRepository{db: db, log: log, pageLimit: pageLimit}
}

// StoreMessage persists one record in BadgerDB. The key is formatted as
// "msg:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the UUID as a collision disconnector if
//     two messages arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message ArchivedMessage) error {
	key := fmt.Sprintf("msg:%019d:%s", message.At.UnixNano(), message.ID)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetMessages pages backwards through the archive, newest first. Thanks to
// the padded timestamp in the key, records are naturally time-ordered; the
// returned cursor resumes the scan where the previous page stopped. It
// stops collecting once the configured page limit is reached.
func (m MessageRepository) GetMessages(cursor *string) ([]ArchivedMessage, *string, error) {
	var payloads [][]byte
	var lastKey string

	err := m.db.View(func(txn *badger.Txn) error {
		const prefixStr = "msg:"
		prefix := []byte(prefixStr)

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past every possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.pageLimit != nil && len(payloads) == *m.pageLimit {
				m.log.Debug(fmt.Sprintf("Maximum of %d archived messages reached", *m.pageLimit))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(value []byte) error {
				payloads = append(payloads, append([]byte(nil), value...))
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

	messages := make([]ArchivedMessage, 0, len(payloads))
	for _, payload := range payloads {
		var message ArchivedMessage
		if err = json.Unmarshal(payload, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}
