package aws

import (
	"context"
	"errors"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// EventTypeAttribute carries the event type so subscriptions can filter on it.
const EventTypeAttribute = "event_type"

// SNSPublisher publishes one event body to a topic.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn, eventType string, body []byte) error
}

type SNSClient struct {
	client *sns.Client
}

func NewSNSClient(cfg sdkaws.Config) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg)}
}

func (s *SNSClient) Publish(ctx context.Context, topicArn, eventType string, body []byte) error {
	if topicArn == "" {
		return errors.New("sns: no topic arn")
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          sdkaws.String(topicArn),
		Message:           sdkaws.String(string(body)),
		MessageAttributes: eventAttributes(eventType),
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", eventType, err)
	}
	return nil
}

func eventAttributes(eventType string) map[string]types.MessageAttributeValue {
	if eventType == "" {
		return nil
	}
	return map[string]types.MessageAttributeValue{
		EventTypeAttribute: {
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(eventType),
		},
	}
}
