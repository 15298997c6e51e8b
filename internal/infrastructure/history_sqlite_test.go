package infrastructure

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteHistoryRepository {
	t.Helper()
	repo, err := NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func record(userID, url, status string, createdAt time.Time) *domain.DownloadRecord {
	return &domain.DownloadRecord{
		RequestID: fmt.Sprintf("req-%d", createdAt.UnixNano()),
		UserID:    userID,
		URL:       url,
		Platform:  domain.PlatformName(url),
		Status:    status,
		FileSize:  1000,
		CreatedAt: createdAt,
	}
}

func TestUpsertUser(t *testing.T) {
	repo := newTestRepo(t)

	user := &domain.BotUser{ID: "42", Username: "alice", FirstName: "Alice"}
	require.NoError(t, repo.UpsertUser(user))

	// Upserting again updates the profile instead of failing.
	user.Username = "alice_new"
	require.NoError(t, repo.UpsertUser(user))

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Users)
}

func TestRecord_BumpsUserCounter(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.UpsertUser(&domain.BotUser{ID: "42", Username: "alice"}))

	now := time.Now()
	require.NoError(t, repo.Record(record("42", "https://youtu.be/a", domain.RecordStatusSuccess, now)))
	require.NoError(t, repo.Record(record("42", "https://youtu.be/b", domain.RecordStatusFailed, now.Add(time.Second))))

	stats, err := repo.StatsForUser("42")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Succeeded)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1000), stats.TotalSize, "only successful downloads count toward size")
}

func TestRecent_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		rec := record("42", fmt.Sprintf("https://youtu.be/v%d", i), domain.RecordStatusSuccess, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Record(rec))
	}

	records, err := repo.Recent(3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "https://youtu.be/v4", records[0].URL)
	assert.Equal(t, "https://youtu.be/v3", records[1].URL)
	assert.Equal(t, "https://youtu.be/v2", records[2].URL)
}

func TestByUser(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now()
	require.NoError(t, repo.Record(record("42", "https://youtu.be/a", domain.RecordStatusSuccess, now)))
	require.NoError(t, repo.Record(record("99", "https://youtu.be/b", domain.RecordStatusSuccess, now.Add(time.Second))))

	records, err := repo.ByUser("42", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://youtu.be/a", records[0].URL)
}

func TestStats(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.UpsertUser(&domain.BotUser{ID: "42"}))

	now := time.Now()
	require.NoError(t, repo.Record(record("42", "https://youtu.be/a", domain.RecordStatusSuccess, now)))
	require.NoError(t, repo.Record(record("42", "https://youtu.be/b", domain.RecordStatusSuccess, now.Add(time.Second))))
	require.NoError(t, repo.Record(record("42", "https://www.tiktok.com/@u/video/1", domain.RecordStatusFailed, now.Add(2*time.Second))))

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Succeeded)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Users)
	assert.Equal(t, "YouTube", stats.TopPlatform)
}

func TestStats_EmptyDatabase(t *testing.T) {
	repo := newTestRepo(t)

	stats, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)

	userStats, err := repo.StatsForUser("nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), userStats.Total)
	assert.Equal(t, int64(0), userStats.TotalSize)
}
