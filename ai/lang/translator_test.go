package lang

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var req struct {
			Q      string `json:"q"`
			Source string `json:"source"`
			Target string `json:"target"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Source != "id" || req.Target != "en" {
			t.Errorf("pair = %s->%s, want id->en", req.Source, req.Target)
		}

		_ = json.NewEncoder(w).Encode(map[string]string{
			"translatedText": "how are total sales",
		})
	}))
	defer server.Close()

	tr := NewTranslator(&TranslatorConfig{BaseURL: server.URL})

	out, err := tr.Translate(context.Background(), "berapa total penjualan", "id", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "how are total sales" {
		t.Errorf("Translate() = %q", out)
	}
}

func TestTranslateSameLanguage(t *testing.T) {
	// Must not hit the service at all.
	tr := NewTranslator(&TranslatorConfig{BaseURL: "http://127.0.0.1:0"})

	out, err := tr.Translate(context.Background(), "hello there", "en", "en")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if out != "hello there" {
		t.Errorf("Translate() = %q, want passthrough", out)
	}
}

func TestTranslateServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unsupported pair", http.StatusBadRequest)
	}))
	defer server.Close()

	tr := NewTranslator(&TranslatorConfig{BaseURL: server.URL})

	_, err := tr.Translate(context.Background(), "text", "en", "xx")
	if !errors.Is(err, ErrTranslation) {
		t.Errorf("Translate() error = %v, want ErrTranslation", err)
	}
}

func TestDetectEmptyText(t *testing.T) {
	d := NewDetector()

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := d.Detect(text); !errors.Is(err, ErrDetection) {
			t.Errorf("Detect(%q) error = %v, want ErrDetection", text, err)
		}
	}
}

func TestDetectEnglish(t *testing.T) {
	d := NewDetector()

	code, err := d.Detect("What were the total sales in March compared to April?")
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if code != "en" {
		t.Errorf("Detect() = %q, want en", code)
	}
}
