package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Zachkp/portfolio/internal/content"
)

func TestPrintProjects(t *testing.T) {
	p, err := content.Load()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := printProjects(&buf, p, "ai"); err != nil {
		t.Fatalf("printProjects: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 ai projects, got %d:\n%s", len(lines), buf.String())
	}

	buf.Reset()
	if err := printProjects(&buf, p, "iot"); err != nil {
		t.Fatalf("declared empty filter: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("iot should list nothing, got %q", buf.String())
	}

	if err := printProjects(&buf, p, "mobile"); err == nil {
		t.Fatal("expected an error for an undeclared filter")
	}
}

func TestContactTransport(t *testing.T) {
	if _, err := contactTransport("simulated"); err != nil {
		t.Fatalf("simulated: %v", err)
	}
	if _, err := contactTransport("carrier-pigeon"); err == nil {
		t.Fatal("expected an error for an unknown transport")
	}
}
