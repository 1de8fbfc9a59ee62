package linkcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linksleuth/linksleuth/internal/model"
)

// TestCheckMasking tests the brand-in-subdomain heuristic.
func TestCheckMasking(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		rawURL  string
		flagged bool
	}{
		{"brand in subdomain", "https://google.com.hacker.io/login", true},
		{"paypal deep subdomain", "https://secure.paypal.account.evil.tld", true},
		{"plain domain", "https://example.com", false},
		{"two labels only", "https://google.com", false},
		{"benign subdomain", "https://www.example.com", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := NewAnalyzer(WithTimeout(100 * time.Millisecond))
			result := model.LinkAnalysis{}
			a.checkMasking(model.Hostname(tc.rawURL), &result)

			if got := result.HasFlag(model.FlagMaskedDomain); got != tc.flagged {
				t.Errorf("masked = %v, expected %v (detail: %q)", got, tc.flagged, result.MaskedDomain)
			}
		})
	}
}

// TestCheckPunycode tests the homograph heuristic and Unicode decoding.
func TestCheckPunycode(t *testing.T) {
	t.Parallel()

	t.Run("punycode hostname is flagged and decoded", func(t *testing.T) {
		t.Parallel()

		a := NewAnalyzer()
		result := model.LinkAnalysis{}
		a.checkPunycode("xn--pple-43d.com", &result) // аpple.com with Cyrillic а

		if !result.IsPunycode {
			t.Error("expected IsPunycode=true")
		}
		if !result.HasFlag(model.FlagPunycode) {
			t.Error("expected punycode risk flag")
		}
		if result.UnicodeHost == "" {
			t.Error("expected decoded Unicode hostname")
		}
	})

	t.Run("ascii hostname is not flagged", func(t *testing.T) {
		t.Parallel()

		a := NewAnalyzer()
		result := model.LinkAnalysis{}
		a.checkPunycode("example.com", &result)

		if result.IsPunycode {
			t.Error("expected IsPunycode=false")
		}
	})
}

// TestCheckTrackingParams tests tracking key detection.
func TestCheckTrackingParams(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		rawURL   string
		expected int
	}{
		{"utm keys", "https://example.com/?utm_source=mail&utm_campaign=x", 2},
		{"fbclid", "https://example.com/?fbclid=abc", 1},
		{"gclid mixed with benign", "https://example.com/?q=1&gclid=abc", 1},
		{"no tracking", "https://example.com/?q=1&page=2", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			a := NewAnalyzer(WithTimeout(100 * time.Millisecond))
			// Analyze against an unreachable page: structural checks only.
			result := a.Analyze(context.Background(), tc.rawURL)

			if len(result.TrackingParams) != tc.expected {
				t.Errorf("TrackingParams = %v, expected %d keys", result.TrackingParams, tc.expected)
			}
			if (tc.expected > 0) != result.HasFlag(model.FlagTracking) {
				t.Errorf("tracking flag = %v, expected %v", result.HasFlag(model.FlagTracking), tc.expected > 0)
			}
		})
	}
}

// TestAnalyzeContent tests the page fetch heuristics against a stub site.
func TestAnalyzeContent(t *testing.T) {
	t.Parallel()

	page := `<!DOCTYPE html>
<html><head><title>Portal</title></head>
<body>
  <p>Please LOGIN to verify your account.</p>
  <a href="/inside">in</a>
  <a href="deeper/page">in2</a>
  <a href="https://other.example/out">out</a>
  <iframe src="https://ads.example/frame"></iframe>
  <iframe src="/local"></iframe>
</body></html>`

	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop", http.StatusFound)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final/", http.StatusFound)
	})
	mux.HandleFunc("/final/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a := NewAnalyzer(WithTimeout(2 * time.Second))
	result := a.Analyze(context.Background(), srv.URL+"/start")

	if result.FetchErr != "" {
		t.Fatalf("unexpected fetch error: %s", result.FetchErr)
	}
	if result.RedirectCount != 2 {
		t.Errorf("RedirectCount = %d, expected 2", result.RedirectCount)
	}
	if result.IframeCount != 2 {
		t.Errorf("IframeCount = %d, expected 2", result.IframeCount)
	}
	if result.InternalLinks != 1 {
		t.Errorf("InternalLinks = %d, expected 1 (relative link under final page)", result.InternalLinks)
	}
	if result.ExternalLinks != 2 {
		t.Errorf("ExternalLinks = %d, expected 2", result.ExternalLinks)
	}
	if !result.HasFlag(model.FlagPhishingKeywords) {
		t.Error("expected phishing keyword flag for login/verify/account text")
	}
}

// TestAnalyzeFetchFailure verifies structural findings survive a dead host.
func TestAnalyzeFetchFailure(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(WithTimeout(300 * time.Millisecond))
	result := a.Analyze(context.Background(), "http://google.com.127-0-0-1.invalid/?utm_source=x")

	if result.FetchErr == "" {
		t.Error("expected FetchErr for unreachable host")
	}
	if !result.HasFlag(model.FlagMaskedDomain) {
		t.Error("expected masking flag to survive fetch failure")
	}
	if !result.HasFlag(model.FlagTracking) {
		t.Error("expected tracking flag to survive fetch failure")
	}
	if result.IframeCount != 0 || result.InternalLinks != 0 {
		t.Error("expected content counters at zero after failed fetch")
	}
}
