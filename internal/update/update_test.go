package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func releaseServer(t *testing.T, status int, release any) Checker {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.github.v3+json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(release)
	}))
	t.Cleanup(server.Close)
	return Checker{URL: server.URL, HTTPClient: server.Client()}
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"", "v"},
	}
	for _, tt := range tests {
		if got := normalizeVersion(tt.input); got != tt.expected {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCheck_DevVersion(t *testing.T) {
	if (Checker{URL: "http://127.0.0.1:1"}).Check(context.Background(), "dev") != nil {
		t.Error("Expected nil for dev version")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		release   Release
		wantAvail bool
	}{
		{"newer release", "1.0.0", Release{TagName: "v1.1.0", HTMLURL: "https://example.com/r"}, true},
		{"same release", "v1.1.0", Release{TagName: "v1.1.0"}, false},
		{"older release", "2.0.0", Release{TagName: "v1.9.9"}, false},
		{"prerelease ignored", "1.0.0", Release{TagName: "v2.0.0-rc.1", Prerelease: true}, false},
		{"invalid current", "banana", Release{TagName: "v1.0.0"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := releaseServer(t, http.StatusOK, tt.release)
			result := checker.Check(context.Background(), tt.current)
			if result == nil {
				t.Fatal("expected a result")
			}
			if result.UpdateAvailable != tt.wantAvail {
				t.Errorf("UpdateAvailable = %v, want %v", result.UpdateAvailable, tt.wantAvail)
			}
			if result.UpdateURL != tt.release.HTMLURL {
				t.Errorf("UpdateURL = %q", result.UpdateURL)
			}
		})
	}
}

func TestCheck_Failures(t *testing.T) {
	if releaseServer(t, http.StatusNotFound, Release{TagName: "v9.9.9"}).Check(context.Background(), "1.0.0") != nil {
		t.Error("non-200 should yield nil")
	}
	if releaseServer(t, http.StatusOK, map[string]string{}).Check(context.Background(), "1.0.0") != nil {
		t.Error("missing tag should yield nil")
	}
	if (Checker{URL: "http://127.0.0.1:1"}).Check(context.Background(), "1.0.0") != nil {
		t.Error("unreachable server should yield nil")
	}
}
