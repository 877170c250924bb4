package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
	os.Exit(m.Run())
}

func setupRouter(handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogging(), ErrorHandler())
	r.GET("/test", handler)
	return r
}

func doRequest(r *gin.Engine, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return body["error"]
}

func TestErrorHandler(t *testing.T) {
	t.Run("renders app error with field", func(t *testing.T) {
		r := setupRouter(func(c *gin.Context) {
			_ = c.Error(apperrors.WithField(apperrors.ErrInvalidInput, "amount", "amount must be greater than zero"))
		})
		rec := doRequest(r, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		errObj := errorObject(t, rec)
		if errObj["code"] != "INVALID_INPUT" || errObj["field"] != "amount" {
			t.Errorf("unexpected error body: %v", errObj)
		}
	})

	t.Run("hides unexpected errors", func(t *testing.T) {
		r := setupRouter(func(c *gin.Context) {
			_ = c.Error(errors.New("disk on fire"))
		})
		rec := doRequest(r, nil)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		errObj := errorObject(t, rec)
		if errObj["code"] != "INTERNAL_ERROR" {
			t.Errorf("expected INTERNAL_ERROR, got %v", errObj["code"])
		}
		if _, ok := errObj["field"]; ok {
			t.Error("expected no field on internal errors")
		}
	})

	t.Run("leaves started responses alone", func(t *testing.T) {
		r := setupRouter(func(c *gin.Context) {
			c.String(http.StatusOK, "partial")
			_ = c.Error(errors.New("write failed"))
		})
		rec := doRequest(r, nil)

		if rec.Code != http.StatusOK || rec.Body.String() != "partial" {
			t.Errorf("expected untouched response, got %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestRequestLogging(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	t.Run("assigns a request id", func(t *testing.T) {
		rec := doRequest(setupRouter(ok), nil)
		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected X-Request-ID header")
		}
	})

	t.Run("reuses a valid inbound id", func(t *testing.T) {
		id := "0190b5a4-3b7c-7d2e-9a41-2f1e5c6d7e8f"
		rec := doRequest(setupRouter(ok), http.Header{RequestIDHeader: {id}})
		if got := rec.Header().Get(RequestIDHeader); got != id {
			t.Errorf("expected %s, got %s", id, got)
		}
	})

	t.Run("replaces a malformed inbound id", func(t *testing.T) {
		rec := doRequest(setupRouter(ok), http.Header{RequestIDHeader: {"<script>"}})
		if got := rec.Header().Get(RequestIDHeader); got == "<script>" || got == "" {
			t.Errorf("expected a fresh id, got %q", got)
		}
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/test", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}
