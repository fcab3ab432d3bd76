package notifiers

import (
	"os"
	"path/filepath"
	"testing"
)

func writeNotifiersFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write notifiers file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeNotifiersFile(t, "notifiers.yaml", `
notifiers:
  - id: webhook
    type: HTTP
    http:
      url: https://alerts.example.com/hook
  - id: queue
    type: sqs
    enabled: false
    sqs:
      uri: https://sqs.ap-south-1.amazonaws.com/0/alerts
      region: ap-south-1
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	all := reg.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 notifiers, got %d", len(all))
	}

	// Type is normalized, HTTP defaults are filled in.
	if all[0].Type != TypeHTTP {
		t.Errorf("type = %q, want %q", all[0].Type, TypeHTTP)
	}
	if all[0].HTTP.Method != "POST" || all[0].HTTP.TimeoutSeconds != 5 {
		t.Errorf("http defaults not applied: %+v", all[0].HTTP)
	}

	// The disabled entry is excluded from Enabled().
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "webhook" {
		t.Fatalf("Enabled() = %+v, want only webhook", enabled)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeNotifiersFile(t, "notifiers.json", `{
  "notifiers": [
    {"id": "topic", "type": "sns", "sns": {"topic_arn": "arn:aws:sns:ap-south-1:0:alerts", "region": "ap-south-1"}}
  ]
}`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 1 {
		t.Fatalf("expected 1 notifier")
	}
}

func TestLoadRegistryDuplicateID(t *testing.T) {
	path := writeNotifiersFile(t, "notifiers.yaml", `
notifiers:
  - id: same
    type: http
    http:
      url: https://a.example.com
  - id: same
    type: http
    http:
      url: https://b.example.com
`)

	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadRegistryValidatesTypeSettings(t *testing.T) {
	cases := map[string]string{
		"missing id": `
notifiers:
  - type: http
    http:
      url: https://a.example.com
`,
		"sqs without uri": `
notifiers:
  - id: queue
    type: sqs
    sqs:
      region: ap-south-1
`,
		"sns without topic": `
notifiers:
  - id: topic
    type: sns
    sns:
      region: ap-south-1
`,
		"pubsub without project": `
notifiers:
  - id: ps
    type: gcp_pubsub
    pubsub:
      topic: alerts
`,
		"http without url": `
notifiers:
  - id: hook
    type: http
    http:
      method: POST
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeNotifiersFile(t, "notifiers.yaml", content)
			if _, err := LoadRegistry(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRegistryEmptyFile(t *testing.T) {
	path := writeNotifiersFile(t, "notifiers.yaml", "notifiers: []\n")
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error for empty registry")
	}
}
