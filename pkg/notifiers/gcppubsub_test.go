package notifiers

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestPubSubNotifierPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	defer os.Unsetenv("PUBSUB_EMULATOR_HOST")
	os.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if _, err := client.CreateTopic(ctx, "price-alerts"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	n, err := newPubSubNotifier(ctx, NotifierConfig{
		ID:   "alerts-pubsub",
		Type: TypePubSub,
		PubSub: &PubSubNotifierConfig{
			ProjectID: "test-project",
			Topic:     "price-alerts",
		},
	}, nil)
	if err != nil {
		t.Fatalf("newPubSubNotifier: %v", err)
	}

	if err := n.Notify(ctx, testAlert()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(msgs))
	}
	if msgs[0].Attributes["product_id"] != "7" {
		t.Fatalf("product_id attribute = %q", msgs[0].Attributes["product_id"])
	}
}
