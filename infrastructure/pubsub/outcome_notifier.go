package pubsub

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/logger"
)

type IOutcomeNotifier interface {
	Notify(ctx context.Context, summary *model.DispatchSummary) error
}

// OutcomeNotifier publishes batch summaries to a Pub/Sub topic so downstream
// consumers (alerting, dashboards) can observe dispatch outcomes. Optional;
// a nil client publishes nothing.
type OutcomeNotifier struct {
	client *pubsub.Client
	topic  string
}

func NewOutcomeNotifier(client *pubsub.Client, topic string) IOutcomeNotifier {
	return &OutcomeNotifier{client: client, topic: topic}
}

func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

func (n *OutcomeNotifier) Notify(ctx context.Context, summary *model.DispatchSummary) error {
	if n.client == nil || summary == nil {
		return nil
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	topic := n.client.Topic(n.topic)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		if _, err = n.client.CreateTopic(ctx, n.topic); err != nil {
			return err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server_id", serverID).WithField("batch_id", summary.BatchID).Info("Dispatch summary published")
	return nil
}
