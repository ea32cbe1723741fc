package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newBrotliRouter(body string) *gin.Engine {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/record/", func(c *gin.Context) {
		c.String(http.StatusOK, body)
	})
	r.GET("/uploads/a.png", func(c *gin.Context) {
		c.String(http.StatusOK, body)
	})
	return r
}

func TestBrotliCompressesLargeResponses(t *testing.T) {
	body := strings.Repeat(`{"name":"A","sponsor":"Yayasan TAR"},`, 200)
	r := newBrotliRouter(body)

	req := httptest.NewRequest(http.MethodGet, "/record/", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("expected br encoding, got %q", w.Header().Get("Content-Encoding"))
	}
	decoded, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("decode brotli: %v", err)
	}
	if string(decoded) != body {
		t.Fatalf("decoded body mismatch (got %d bytes, want %d)", len(decoded), len(body))
	}
}

func TestBrotliPassesThroughSmallAndSkippedResponses(t *testing.T) {
	r := newBrotliRouter("short")
	req := httptest.NewRequest(http.MethodGet, "/record/", nil)
	req.Header.Set("Accept-Encoding", "br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "short" {
		t.Fatalf("expected plain short body, got encoding=%q body=%q", w.Header().Get("Content-Encoding"), w.Body.String())
	}

	big := strings.Repeat("x", 4096)
	r = newBrotliRouter(big)
	req = httptest.NewRequest(http.MethodGet, "/uploads/a.png", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.Len() != len(big) {
		t.Fatalf("expected uploads to skip compression, got encoding=%q", w.Header().Get("Content-Encoding"))
	}
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, time.Minute, zerolog.Nop())
	now := time.Unix(1700000000, 0)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/record/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/record/", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	now = now.Add(time.Minute)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/record/", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected refill after one interval, got %d", w.Code)
	}
}

func TestCacheControl(t *testing.T) {
	r := gin.New()
	r.GET("/uploads/a.png", CacheControl(31536000), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/a.png", nil))
	if got := w.Header().Get("Cache-Control"); got != "public, max-age=31536000, immutable" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}
}

func TestMaxBodySize(t *testing.T) {
	r := gin.New()
	r.POST("/record/", MaxBodySize(4), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/record/", strings.NewReader("too long body")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}
