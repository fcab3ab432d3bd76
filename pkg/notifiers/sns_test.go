package notifiers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func TestSNSNotifierPublishesAlert(t *testing.T) {
	client := &fakeSNSClient{}
	n := &snsNotifier{
		id:       "alerts-topic",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:ap-south-1:0:alerts",
		client:   client,
		log:      ensureLogger(nil),
	}

	alert := testAlert()
	if err := n.Notify(context.Background(), alert); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(client.inputs) != 1 {
		t.Fatalf("expected one Publish call, got %d", len(client.inputs))
	}

	input := client.inputs[0]
	if *input.TopicArn != n.topicARN {
		t.Errorf("topic arn = %s", *input.TopicArn)
	}

	var payload PriceAlert
	if err := json.Unmarshal([]byte(*input.Message), &payload); err != nil {
		t.Fatalf("message is not alert JSON: %v", err)
	}
	if !payload.NewPrice.Equal(alert.NewPrice) {
		t.Errorf("payload price = %s, want %s", payload.NewPrice, alert.NewPrice)
	}

	attr, ok := input.MessageAttributes["product_id"]
	if !ok || *attr.StringValue != "7" {
		t.Fatalf("product_id attribute missing or wrong: %+v", input.MessageAttributes)
	}
}

func TestSNSNotifierPublishFailure(t *testing.T) {
	client := &fakeSNSClient{err: errors.New("authorization error")}
	n := &snsNotifier{
		id:       "alerts-topic",
		typ:      TypeSNS,
		topicARN: "arn:aws:sns:ap-south-1:0:alerts",
		client:   client,
		log:      ensureLogger(nil),
	}

	if err := n.Notify(context.Background(), testAlert()); err == nil {
		t.Fatalf("expected publish error to surface")
	}
}
