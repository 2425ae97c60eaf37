package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	options := badger.DefaultOptions(t.TempDir())
	options.Logger = nil
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func archived(sender, line string, at time.Time) ArchivedMessage {
	return ArchivedMessage{
		ID:     uuid.New(),
		Kind:   "PublicBroadcast",
		Sender: sender,
		Line:   line,
		At:     at,
	}
}

func TestMessageRepository_StoreAndGet(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := NewMessageRepository(openTestDB(t), log, nil)

	base := time.Now().UTC().Truncate(time.Second)

	// Given three archived messages, oldest first
	req.NoError(repository.StoreMessage(archived("alice", "alice: one", base)))
	req.NoError(repository.StoreMessage(archived("bob", "bob: two", base.Add(time.Second))))
	req.NoError(repository.StoreMessage(archived("alice", "alice: three", base.Add(2*time.Second))))

	// When the archive is read without a cursor
	messages, cursor, err := repository.GetMessages(nil)
	req.NoError(err)
	req.NotNil(cursor)

	// Then records come back newest first, time-ordered by key
	req.Len(messages, 3)
	req.Equal("alice: three", messages[0].Line)
	req.Equal("bob: two", messages[1].Line)
	req.Equal("alice: one", messages[2].Line)
}

func TestMessageRepository_CursorPagination(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repository := NewMessageRepository(openTestDB(t), log, lo.ToPtr(2))

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		req.NoError(repository.StoreMessage(
			archived("alice", "alice: msg", base.Add(time.Duration(i)*time.Second))))
	}

	// When the first page is read
	firstPage, cursor, err := repository.GetMessages(nil)
	req.NoError(err)
	req.Len(firstPage, 2)
	req.NotNil(cursor)

	// Then the cursor resumes exactly where the scan stopped
	secondPage, _, err := repository.GetMessages(cursor)
	req.NoError(err)
	req.Len(secondPage, 1)
}
