package email

import (
	"context"
	"strings"
	"testing"

	"shiftdesk/internal/platform/config"
)

func TestBuildMessageStripsHeaderBreaks(t *testing.T) {
	msg := string(buildMessage("no-reply@example.com", "anna@example.com", "Shift swap\r\nBcc: evil@example.com", "body"))
	if strings.Contains(msg, "\r\nBcc:") {
		t.Fatalf("header injection survived: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody") {
		t.Fatalf("body not separated from headers: %q", msg)
	}
}

func TestBuildMessageEncodesUnicodeSubject(t *testing.T) {
	msg := string(buildMessage("a@example.com", "b@example.com", "Schicht übernommen", "x"))
	if !strings.Contains(msg, "Subject: =?utf-8?q?") {
		t.Fatalf("expected encoded subject: %q", msg)
	}
}

func TestNewFallsBackToNoop(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false}, nil)
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), "a@example.com", "b@example.com", "s", "b"); err != nil {
		t.Fatalf("noop send: %v", err)
	}
}
