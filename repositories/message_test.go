package repositories

import (
	"fmt"
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
	// Reduced value log size for testing (avoid gigabytes of storage)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMessageRepository_Append_And_Get(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repo := NewMessageRepository(db, log, nil)
	sessionID := uuid.NewString()

	// Given three messages written over time
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		err := repo.AppendMessage(DiskMessage{
			ID:        uuid.New(),
			SessionID: sessionID,
			UserID:    "user-1",
			Content:   fmt.Sprintf("message %d", i),
			At:        base.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
	}

	// When messages are read back
	messages, cursor, err := repo.GetMessages(sessionID, nil)

	// Then they come newest first, fully round-tripped
	req.NoError(err)
	req.NotNil(cursor)
	req.Len(messages, 3)
	req.Equal("message 2", messages[0].Content)
	req.Equal("message 0", messages[2].Content)
	req.Equal("user-1", messages[0].UserID)
	req.Equal(base.Add(2*time.Second), messages[0].At)
}

func TestMessageRepository_Limit_And_Cursor(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repo := NewMessageRepository(db, log, lo.ToPtr(2))
	sessionID := uuid.NewString()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		err := repo.AppendMessage(DiskMessage{
			ID:        uuid.New(),
			SessionID: sessionID,
			UserID:    "user-1",
			Content:   fmt.Sprintf("message %d", i),
			At:        base.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
	}

	// When the first page is read
	page1, cursor, err := repo.GetMessages(sessionID, nil)
	req.NoError(err)
	req.Len(page1, 2)
	req.Equal("message 4", page1[0].Content)
	req.Equal("message 3", page1[1].Content)

	// When the next page resumes from the cursor
	page2, _, err := repo.GetMessages(sessionID, cursor)
	req.NoError(err)
	req.Len(page2, 2)
	req.Equal("message 2", page2[0].Content)
	req.Equal("message 1", page2[1].Content)
}

func TestMessageRepository_Sessions_Are_Isolated(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	repo := NewMessageRepository(db, log, nil)

	err := repo.AppendMessage(DiskMessage{
		ID:        uuid.New(),
		SessionID: "session-a",
		UserID:    "user-1",
		Content:   "for a",
		At:        time.Now().UTC(),
	})
	req.NoError(err)

	// Messages of another session stay invisible
	messages, _, err := repo.GetMessages("session-b", nil)
	req.NoError(err)
	req.Empty(messages)
}
