package qrimage

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestRenderProducesPNGDataURI(t *testing.T) {
	r := NewRenderer(128)

	uri, err := r.Render("2@abcdef,ghijkl,mnopqr")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix in %q", uri[:min(len(uri), 40)])
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	// PNG magic bytes
	if len(raw) < 8 || string(raw[1:4]) != "PNG" {
		t.Fatal("payload is not a PNG image")
	}
}

func TestRenderEmptyCode(t *testing.T) {
	r := NewRenderer(0)
	if _, err := r.Render(""); err == nil {
		t.Fatal("expected error for empty code")
	}
}
