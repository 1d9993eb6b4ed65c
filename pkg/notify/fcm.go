package notify

import (
	"context"

	"go.uber.org/zap"
)

// TopicSender is the push-channel side of an FCM client.
type TopicSender interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) (string, error)
}

// FCMNotifier broadcasts messages to an FCM topic.
type FCMNotifier struct {
	sender TopicSender
	topic  string
	logger *zap.Logger
}

func NewFCMNotifier(sender TopicSender, topic string, logger *zap.Logger) *FCMNotifier {
	return &FCMNotifier{sender: sender, topic: topic, logger: logger}
}

func (f *FCMNotifier) Name() string { return "fcm" }

func (f *FCMNotifier) Send(ctx context.Context, msg Message) error {
	name, err := f.sender.SendToTopic(ctx, f.topic, msg.Title, msg.Body, msg.Data)
	if err != nil {
		return err
	}
	f.logger.Debug("fcm message accepted", zap.String("topic", f.topic), zap.String("name", name), zap.Stringer("id", msg.ID))
	return nil
}
