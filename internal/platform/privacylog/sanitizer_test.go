package privacylog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	return payload
}

func TestSanitizingHandlerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test",
		"passphrase", "hunter2",
		"recovery_key", "EsTc ...",
		"backup_version", "3",
	)

	payload := decode(t, &buf)
	for _, k := range []string{"passphrase", "recovery_key"} {
		if got, _ := payload[k].(string); got != redactedValue {
			t.Fatalf("expected %s redacted, got %q", k, got)
		}
	}
	if got, _ := payload["backup_version"].(string); got != "3" {
		t.Fatalf("expected untouched version, got %q", got)
	}
}

func TestSanitizingHandlerFingerprintsIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test", "user_id", "@alice:example.org", "room_id", "!r:example.org")

	payload := decode(t, &buf)
	if _, ok := payload["user_id"]; ok {
		t.Fatal("user_id should not be present")
	}
	got, _ := payload["user_id_fp"].(string)
	if !strings.HasPrefix(got, "fp_") {
		t.Fatalf("unexpected fingerprint value: %q", got)
	}
	if got != FingerprintID("@alice:example.org") {
		t.Fatal("fingerprint must be stable within a run")
	}
	if strings.Contains(buf.String(), "alice") {
		t.Fatalf("identifier leaked: %s", buf.String())
	}
}

func TestSanitizingHandlerSanitizesGroupsAndWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil))).
		With("token", "abc")
	logger.Info("test", slog.Group("backup", slog.String("decryption_key", "xyz"), slog.Int("count", 2)))

	out := buf.String()
	if strings.Contains(out, "abc") || strings.Contains(out, "xyz") {
		t.Fatalf("secret leaked: %s", out)
	}
	if !strings.Contains(out, `"count":2`) {
		t.Fatalf("expected group to survive, got %s", out)
	}
}

type leaky struct{ secret string }

func (l leaky) LogValue() slog.Value {
	return slog.GroupValue(slog.String("secret", l.secret), slog.String("kind", "test"))
}

func TestSanitizingHandlerResolvesLogValuers(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewJSONHandler(&buf, nil))
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected handler enabled for info")
	}
	rec := slog.NewRecord(time.Now().UTC(), slog.LevelInfo, "msg", 0)
	rec.AddAttrs(slog.Any("value", leaky{secret: "s3cr3t"}))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if strings.Contains(buf.String(), "s3cr3t") {
		t.Fatalf("LogValuer output not sanitized: %s", buf.String())
	}
}

func TestWrapHandlerNil(t *testing.T) {
	if WrapHandler(nil) != nil {
		t.Fatal("expected nil")
	}
}
