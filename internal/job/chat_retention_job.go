package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/deephumans/deephumans/internal/repo"
)

// ChatRetentionJob prunes chat turns older than the configured retention so
// the conversation table does not grow without bound.
type ChatRetentionJob struct {
	messages      *repo.ChatMessageRepo
	retentionDays int
}

func NewChatRetentionJob(messages *repo.ChatMessageRepo, retentionDays int) *ChatRetentionJob {
	return &ChatRetentionJob{messages: messages, retentionDays: retentionDays}
}

func (j *ChatRetentionJob) Name() string {
	return "chat_retention"
}

func (j *ChatRetentionJob) Run(ctx context.Context) error {
	if j.retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays).Unix()
	deleted, err := j.messages.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		logutil.GetLogger(ctx).Info("pruned old chat messages", zap.Int64("deleted", deleted))
	}
	return nil
}
