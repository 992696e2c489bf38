package notification

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialtimer/backend/internal/domain/notification"
)

func TestMemoryRepository_CoalescesProgress(t *testing.T) {
	repo := NewMemoryRepository(10)

	require.NoError(t, repo.Save(&notification.Notification{ID: "p1", Kind: notification.KindProgress}))
	require.NoError(t, repo.Save(&notification.Notification{ID: "p2", Kind: notification.KindProgress}))
	require.NoError(t, repo.Save(&notification.Notification{ID: "f", Kind: notification.KindFinished}))
	require.NoError(t, repo.Save(&notification.Notification{ID: "p3", Kind: notification.KindProgress}))

	items, err := repo.FindRecent(0)
	require.NoError(t, err)
	ids := make([]string, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"p3", "f", "p2"}, ids)
}

func TestMemoryRepository_Bounded(t *testing.T) {
	repo := NewMemoryRepository(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(&notification.Notification{ID: fmt.Sprint(i), Kind: notification.KindVibrate}))
	}

	items, err := repo.FindRecent(0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "4", items[0].ID)
	assert.Equal(t, "2", items[2].ID)

	items, _ = repo.FindRecent(1)
	assert.Len(t, items, 1)
}

func TestMemoryRepository_DefaultCapacity(t *testing.T) {
	repo := NewMemoryRepository(0)
	assert.Equal(t, DefaultHistorySize, repo.capacity)
}
