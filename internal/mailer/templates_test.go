package mailer

import (
	"strings"
	"testing"
)

func TestRenderAccessCode(t *testing.T) {
	html, err := RenderAccessCode(AccessCodeEmail{
		Name:    "Ana",
		Email:   "ana@example.com",
		Code:    "abc123-deadbeef",
		URL:     "http://localhost:3000/login",
		AppName: "Curriculo",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Ana", "abc123-deadbeef", "ana@example.com", "Curriculo"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered email missing %q", want)
		}
	}
}

func TestRenderAccessCodeDefaultsName(t *testing.T) {
	html, err := RenderAccessCode(AccessCodeEmail{
		Email:   "ana@example.com",
		Code:    "abc",
		AppName: "Curriculo",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Usuario") {
		t.Fatalf("unnamed recipient should fall back to the generic greeting")
	}
}

func TestRenderFeedbackEscapesHTML(t *testing.T) {
	html, err := RenderFeedback(FeedbackEmail{
		Title:   "<script>alert(1)</script>",
		Comment: "todo bien",
		AppName: "Curriculo",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("markup in feedback must be escaped")
	}
	if !strings.Contains(html, "todo bien") {
		t.Fatalf("rendered feedback missing comment")
	}
}
