package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deephumans/deephumans/internal/model"
	appErr "github.com/deephumans/deephumans/internal/pkg/errors"
	"github.com/deephumans/deephumans/internal/pkg/timeutil"
	"github.com/deephumans/deephumans/internal/repo"
	"github.com/deephumans/deephumans/test/testutil"
)

func seedConversation(t *testing.T, messages *repo.ChatMessageRepo, userID, character string, turns int) {
	t.Helper()
	base := timeutil.NowUnix()
	for i := 0; i < turns; i++ {
		msg := &model.ChatMessage{
			ID:            fmt.Sprintf("%s-%s-%02d", userID, character, i),
			UserID:        userID,
			CharacterName: character,
			Content:       fmt.Sprintf("turn %d", i),
			IsFromBot:     i%2 == 1,
			Ctime:         base + int64(i),
		}
		require.NoError(t, messages.Insert(context.Background(), msg))
	}
}

func TestChatMessageRepoListByCharacter(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	messages := repo.NewChatMessageRepo(db)
	seedConversation(t, messages, "user-list", "Albert Einstein", 4)
	seedConversation(t, messages, "user-list", "Isaac Newton", 2)

	items, err := messages.ListByCharacter(context.Background(), "user-list", "Albert Einstein")
	require.NoError(t, err)
	require.Len(t, items, 4)
	require.Equal(t, "turn 0", items[0].Content)
	require.Equal(t, "turn 3", items[3].Content)
	require.False(t, items[0].IsFromBot)
	require.True(t, items[1].IsFromBot)

	other, err := messages.ListByCharacter(context.Background(), "other-user", "Albert Einstein")
	require.NoError(t, err)
	require.Len(t, other, 0)
}

func TestChatMessageRepoListRecent(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	messages := repo.NewChatMessageRepo(db)
	seedConversation(t, messages, "user-recent", "Marie Curie", 15)

	items, err := messages.ListRecent(context.Background(), "user-recent", "Marie Curie", 10)
	require.NoError(t, err)
	require.Len(t, items, 10)
	// Latest ten turns, returned oldest first.
	require.Equal(t, "turn 5", items[0].Content)
	require.Equal(t, "turn 14", items[9].Content)
}

func TestChatMessageRepoDeleteByID(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	messages := repo.NewChatMessageRepo(db)
	seedConversation(t, messages, "user-del", "Cleopatra", 2)

	// Another user cannot delete this message.
	err := messages.DeleteByID(context.Background(), "other-user", "user-del-Cleopatra-00")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	require.NoError(t, messages.DeleteByID(context.Background(), "user-del", "user-del-Cleopatra-00"))
	items, err := messages.ListByCharacter(context.Background(), "user-del", "Cleopatra")
	require.NoError(t, err)
	require.Len(t, items, 1)

	err = messages.DeleteByID(context.Background(), "user-del", "user-del-Cleopatra-00")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestChatMessageRepoDeleteByCharacter(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	messages := repo.NewChatMessageRepo(db)
	seedConversation(t, messages, "user-clear", "Nikola Tesla", 6)
	seedConversation(t, messages, "user-clear", "William Shakespeare", 2)

	deleted, err := messages.DeleteByCharacter(context.Background(), "user-clear", "Nikola Tesla")
	require.NoError(t, err)
	require.EqualValues(t, 6, deleted)

	kept, err := messages.ListByCharacter(context.Background(), "user-clear", "William Shakespeare")
	require.NoError(t, err)
	require.Len(t, kept, 2)
}

func TestChatMessageRepoDeleteOlderThan(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	messages := repo.NewChatMessageRepo(db)
	old := &model.ChatMessage{
		ID:            "user-retention-old",
		UserID:        "user-retention",
		CharacterName: "Albert Einstein",
		Content:       "ancient turn",
		Ctime:         1000,
	}
	require.NoError(t, messages.Insert(context.Background(), old))
	seedConversation(t, messages, "user-retention", "Albert Einstein", 1)

	deleted, err := messages.DeleteOlderThan(context.Background(), 2000)
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	items, err := messages.ListByCharacter(context.Background(), "user-retention", "Albert Einstein")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "turn 0", items[0].Content)
}
