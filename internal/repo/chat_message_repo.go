package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/deephumans/deephumans/internal/model"
	"github.com/deephumans/deephumans/internal/pkg/dbutil"
	appErr "github.com/deephumans/deephumans/internal/pkg/errors"
)

var chatMessageFields = []string{"id", "user_id", "character_name", "content", "is_from_bot", "ctime"}

type ChatMessageRepo struct {
	db *sql.DB
}

func NewChatMessageRepo(db *sql.DB) *ChatMessageRepo {
	return &ChatMessageRepo{db: db}
}

func (r *ChatMessageRepo) Insert(ctx context.Context, msg *model.ChatMessage) error {
	isFromBot := 0
	if msg.IsFromBot {
		isFromBot = 1
	}
	data := map[string]interface{}{
		"id":             msg.ID,
		"user_id":        msg.UserID,
		"character_name": msg.CharacterName,
		"content":        msg.Content,
		"is_from_bot":    isFromBot,
		"ctime":          msg.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_messages", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

// ListByCharacter returns the full conversation for one (user, character)
// pair, oldest first.
func (r *ChatMessageRepo) ListByCharacter(ctx context.Context, userID, characterName string) ([]model.ChatMessage, error) {
	where := map[string]interface{}{
		"user_id":        userID,
		"character_name": characterName,
		"_orderby":       "ctime asc, id asc",
	}
	return r.list(ctx, where)
}

// ListRecent returns at most limit latest turns, oldest first.
func (r *ChatMessageRepo) ListRecent(ctx context.Context, userID, characterName string, limit int) ([]model.ChatMessage, error) {
	where := map[string]interface{}{
		"user_id":        userID,
		"character_name": characterName,
		"_orderby":       "ctime desc, id desc",
		"_limit":         []uint{0, uint(limit)},
	}
	items, err := r.list(ctx, where)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

func (r *ChatMessageRepo) list(ctx context.Context, where map[string]interface{}) ([]model.ChatMessage, error) {
	sqlStr, args, err := builder.BuildSelect("chat_messages", where, chatMessageFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var items []model.ChatMessage
	for rows.Next() {
		var msg model.ChatMessage
		var isFromBot int
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.CharacterName, &msg.Content, &isFromBot, &msg.Ctime); err != nil {
			return nil, err
		}
		msg.IsFromBot = isFromBot != 0
		items = append(items, msg)
	}
	return items, rows.Err()
}

func (r *ChatMessageRepo) DeleteByID(ctx context.Context, userID, messageID string) error {
	where := map[string]interface{}{"id": messageID, "user_id": userID}
	sqlStr, args, err := builder.BuildDelete("chat_messages", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *ChatMessageRepo) DeleteByCharacter(ctx context.Context, userID, characterName string) (int64, error) {
	where := map[string]interface{}{"user_id": userID, "character_name": characterName}
	sqlStr, args, err := builder.BuildDelete("chat_messages", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *ChatMessageRepo) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	where := map[string]interface{}{"ctime <": cutoff}
	sqlStr, args, err := builder.BuildDelete("chat_messages", where)
	if err != nil {
		return 0, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
