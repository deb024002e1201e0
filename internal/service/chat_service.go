package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/deephumans/deephumans/internal/ai"
	"github.com/deephumans/deephumans/internal/model"
	appErr "github.com/deephumans/deephumans/internal/pkg/errors"
	"github.com/deephumans/deephumans/internal/pkg/timeutil"
	"github.com/deephumans/deephumans/internal/repo"
)

// ChatService owns chat persistence around the assistant: it stores the user
// turn, obtains the orchestrated reply (which may be a degraded fallback)
// and stores that too, so history always reflects what the user saw.
type ChatService struct {
	messages  *repo.ChatMessageRepo
	assistant *AssistantService
	markdown  goldmark.Markdown
}

func NewChatService(messages *repo.ChatMessageRepo, assistant *AssistantService) *ChatService {
	return &ChatService{
		messages:  messages,
		assistant: assistant,
		markdown:  goldmark.New(),
	}
}

type SendResult struct {
	UserMessage model.ChatMessage `json:"user_message"`
	BotMessage  model.ChatMessage `json:"bot_message"`
	BotHTML     string            `json:"bot_html"`
}

func (s *ChatService) Send(ctx context.Context, userID, characterName, content string) (*SendResult, error) {
	characterName = strings.TrimSpace(characterName)
	if characterName == "" || strings.TrimSpace(content) == "" {
		return nil, appErr.ErrInvalid
	}
	recent, err := s.messages.ListRecent(ctx, userID, characterName, historyWindow)
	if err != nil {
		return nil, err
	}

	userMsg := model.ChatMessage{
		ID:            newID(),
		UserID:        userID,
		CharacterName: characterName,
		Content:       content,
		IsFromBot:     false,
		Ctime:         timeutil.NowUnix(),
	}
	if err := s.messages.Insert(ctx, &userMsg); err != nil {
		return nil, err
	}

	reply := s.assistant.GetReply(ctx, characterName, content, toPromptHistory(recent))

	botMsg := model.ChatMessage{
		ID:            newID(),
		UserID:        userID,
		CharacterName: characterName,
		Content:       reply,
		IsFromBot:     true,
		Ctime:         timeutil.NowUnix(),
	}
	// Same-second inserts must still order the bot turn after the user turn.
	if botMsg.Ctime <= userMsg.Ctime {
		botMsg.Ctime = userMsg.Ctime + 1
	}
	if err := s.messages.Insert(ctx, &botMsg); err != nil {
		return nil, err
	}
	return &SendResult{
		UserMessage: userMsg,
		BotMessage:  botMsg,
		BotHTML:     s.renderHTML(ctx, reply),
	}, nil
}

func (s *ChatService) History(ctx context.Context, userID, characterName string) ([]model.ChatMessage, error) {
	return s.messages.ListByCharacter(ctx, userID, characterName)
}

func (s *ChatService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	return s.messages.DeleteByID(ctx, userID, messageID)
}

func (s *ChatService) ClearCharacter(ctx context.Context, userID, characterName string) error {
	deleted, err := s.messages.DeleteByCharacter(ctx, userID, characterName)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("chat history cleared",
		zap.String("user_id", userID),
		zap.String("character", characterName),
		zap.Int64("deleted", deleted),
	)
	return nil
}

func toPromptHistory(items []model.ChatMessage) []ai.Message {
	history := make([]ai.Message, 0, len(items))
	for _, item := range items {
		role := ai.RoleUser
		if item.IsFromBot {
			role = "bot"
		}
		history = append(history, ai.Message{Role: role, Content: item.Content})
	}
	return history
}

func (s *ChatService) renderHTML(ctx context.Context, text string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		logutil.GetLogger(ctx).Warn("markdown render failed", zap.Error(err))
		return text
	}
	return buf.String()
}
