package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

const logRetentionDays = 30

// LogShipper writes log lines to a CloudWatch Logs stream. It implements
// io.Writer so it can be teed into the zap core.
type LogShipper struct {
	client        *cloudwatchlogs.Client
	group         string
	stream        string
	mu            sync.Mutex
	sequenceToken *string
}

// NewLogShipper ensures the log group exists and opens a fresh stream named
// after the service and start time.
func NewLogShipper(ctx context.Context, cfg sdkaws.Config, group, serviceName string) (*LogShipper, error) {
	if group == "" {
		group = "/storefront/services"
	}
	s := &LogShipper{
		client: cloudwatchlogs.NewFromConfig(cfg),
		group:  group,
		stream: fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()),
	}

	if err := s.ensureGroup(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure log group: %w", err)
	}
	if _, err := s.client.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  sdkaws.String(s.group),
		LogStreamName: sdkaws.String(s.stream),
	}); err != nil {
		return nil, fmt.Errorf("failed to create log stream: %w", err)
	}
	return s, nil
}

func (s *LogShipper) ensureGroup(ctx context.Context) error {
	_, err := s.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: sdkaws.String(s.group),
	})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return err
	}

	_, err = s.client.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    sdkaws.String(s.group),
		RetentionInDays: sdkaws.Int32(logRetentionDays),
	})
	return err
}

// Write ships one log line. Failures go to stderr and never fail the caller.
func (s *LogShipper) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := s.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  sdkaws.String(s.group),
		LogStreamName: sdkaws.String(s.stream),
		SequenceToken: s.sequenceToken,
		LogEvents: []types.InputLogEvent{{
			Message:   sdkaws.String(string(p)),
			Timestamp: sdkaws.Int64(time.Now().UnixMilli()),
		}},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch write error: %v\n", err)
		return len(p), nil
	}
	s.sequenceToken = out.NextSequenceToken
	return len(p), nil
}
