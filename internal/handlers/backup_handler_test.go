package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"fintrack/internal/backup"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// --- mock backup service ---

type mockBackupService struct {
	exportFn  func(ctx context.Context) (*backup.Bundle, error)
	restoreFn func(ctx context.Context, b *backup.Bundle) (*backup.RestoreResult, error)
	wipeFn    func(ctx context.Context) error
}

func (m *mockBackupService) Export(ctx context.Context) (*backup.Bundle, error) {
	if m.exportFn != nil {
		return m.exportFn(ctx)
	}
	return sampleBundle(), nil
}

func (m *mockBackupService) Restore(ctx context.Context, b *backup.Bundle) (*backup.RestoreResult, error) {
	if m.restoreFn != nil {
		return m.restoreFn(ctx, b)
	}
	return &backup.RestoreResult{Accounts: len(b.Database.Accounts)}, nil
}

func (m *mockBackupService) Wipe(ctx context.Context) error {
	if m.wipeFn != nil {
		return m.wipeFn(ctx)
	}
	return nil
}

var _ BackupServicer = (*mockBackupService)(nil)

type mockReportBuilder struct {
	err error
}

func (m *mockReportBuilder) Build(ctx context.Context) (*excelize.File, error) {
	if m.err != nil {
		return nil, m.err
	}
	return excelize.NewFile(), nil
}

func sampleBundle() *backup.Bundle {
	db := backup.Database{
		Accounts: []backup.AccountRecord{
			{ID: "a1", Name: "Checking", Type: models.AccountTypeBank, Balance: cents(100), CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		Transactions: []backup.TransactionRecord{},
		IncomeGroups: []backup.IncomeGroupRecord{},
	}
	return &backup.Bundle{
		Metadata: backup.Metadata{
			SchemaVersion: backup.SchemaVersion,
			ExportedAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			Counts:        db.Counts(),
		},
		Database: db,
	}
}

func setupBackupRouter(handler *BackupHandler) *gin.Engine {
	r := gin.New()
	r.GET("/backup", handler.Export)
	r.POST("/backup/restore", handler.Restore)
	r.DELETE("/data", handler.Wipe)
	r.GET("/report.xlsx", handler.Report)
	return r
}

func doRawRequest(r *gin.Engine, method, path string, body []byte, passphrase string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if passphrase != "" {
		req.Header.Set(PassphraseHeader, passphrase)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestBackupHandler_Export(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		r := setupBackupRouter(NewBackupHandler(&mockBackupService{}, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "GET", "/backup", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "fintrack_20240601_120000.json") {
			t.Errorf("unexpected disposition %q", cd)
		}
		decoded, err := backup.Decode(rec.Body, "")
		if err != nil {
			t.Fatalf("failed to decode export: %v", err)
		}
		if decoded.Metadata.Counts.Accounts != 1 || decoded.Database.Accounts[0].Name != "Checking" {
			t.Errorf("unexpected bundle: %+v", decoded)
		}
	})

	t.Run("sealed with header passphrase", func(t *testing.T) {
		r := setupBackupRouter(NewBackupHandler(&mockBackupService{}, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "GET", "/backup", nil, "s3cret")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("expected octet-stream, got %q", ct)
		}
		if !backup.IsSealed(rec.Body.Bytes()) {
			t.Fatal("expected a sealed bundle")
		}
		if _, err := backup.Decode(bytes.NewReader(rec.Body.Bytes()), "s3cret"); err != nil {
			t.Errorf("failed to open sealed export: %v", err)
		}
	})

	t.Run("sealed with default passphrase", func(t *testing.T) {
		r := setupBackupRouter(NewBackupHandler(&mockBackupService{}, &mockReportBuilder{}, "configured"))

		rec := doRawRequest(r, "GET", "/backup", nil, "")
		if !backup.IsSealed(rec.Body.Bytes()) {
			t.Fatal("expected a sealed bundle")
		}
	})

	t.Run("returns 500 when export fails", func(t *testing.T) {
		svc := &mockBackupService{
			exportFn: func(context.Context) (*backup.Bundle, error) {
				return nil, apperrors.Wrap(apperrors.ErrStorage, errors.New("disk gone"))
			},
		}
		r := setupBackupRouter(NewBackupHandler(svc, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "GET", "/backup", nil, "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STORAGE_ERROR")
	})
}

func TestBackupHandler_Restore(t *testing.T) {
	encode := func(t *testing.T, passphrase string) []byte {
		t.Helper()
		var buf bytes.Buffer
		if err := backup.Encode(&buf, sampleBundle(), passphrase); err != nil {
			t.Fatalf("encode: %v", err)
		}
		return buf.Bytes()
	}

	t.Run("restores plain bundle", func(t *testing.T) {
		var got *backup.Bundle
		svc := &mockBackupService{
			restoreFn: func(_ context.Context, b *backup.Bundle) (*backup.RestoreResult, error) {
				got = b
				return &backup.RestoreResult{Accounts: 1}, nil
			},
		}
		r := setupBackupRouter(NewBackupHandler(svc, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "POST", "/backup/restore", encode(t, ""), "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got == nil || got.Database.Accounts[0].ID != "a1" {
			t.Errorf("unexpected bundle passed to restore: %+v", got)
		}
		restored := parseJSON(t, rec)["restored"].(map[string]interface{})
		if restored["accounts"] != float64(1) {
			t.Errorf("expected 1 account restored, got %v", restored["accounts"])
		}
	})

	t.Run("restores sealed bundle", func(t *testing.T) {
		r := setupBackupRouter(NewBackupHandler(&mockBackupService{}, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "POST", "/backup/restore", encode(t, "pw"), "pw")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects wrong passphrase", func(t *testing.T) {
		restored := false
		svc := &mockBackupService{
			restoreFn: func(context.Context, *backup.Bundle) (*backup.RestoreResult, error) {
				restored = true
				return &backup.RestoreResult{}, nil
			},
		}
		r := setupBackupRouter(NewBackupHandler(svc, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "POST", "/backup/restore", encode(t, "pw"), "other")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_BACKUP")
		if restored {
			t.Error("expected restore not to run")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		r := setupBackupRouter(NewBackupHandler(&mockBackupService{}, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "POST", "/backup/restore", []byte("not a backup"), "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_BACKUP")
	})

	t.Run("reports unsupported version", func(t *testing.T) {
		svc := &mockBackupService{
			restoreFn: func(context.Context, *backup.Bundle) (*backup.RestoreResult, error) {
				return nil, apperrors.ErrUnsupportedBackup
			},
		}
		r := setupBackupRouter(NewBackupHandler(svc, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "POST", "/backup/restore", encode(t, ""), "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNSUPPORTED_BACKUP_VERSION")
	})
}

func TestBackupHandler_Wipe(t *testing.T) {
	wiped := false
	svc := &mockBackupService{
		wipeFn: func(context.Context) error {
			wiped = true
			return nil
		},
	}
	r := setupBackupRouter(NewBackupHandler(svc, &mockReportBuilder{}, ""))

	rec := doRawRequest(r, "DELETE", "/data", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !wiped {
		t.Error("expected wipe to run")
	}
}

func TestBackupHandler_Report(t *testing.T) {
	t.Run("streams workbook", func(t *testing.T) {
		r := setupBackupRouter(NewBackupHandler(&mockBackupService{}, &mockReportBuilder{}, ""))

		rec := doRawRequest(r, "GET", "/report.xlsx", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		f, err := excelize.OpenReader(rec.Body)
		if err != nil {
			t.Fatalf("expected a readable workbook: %v", err)
		}
		defer f.Close()
		if len(f.GetSheetList()) == 0 {
			t.Error("expected at least one sheet")
		}
	})

	t.Run("returns 500 when build fails", func(t *testing.T) {
		r := setupBackupRouter(NewBackupHandler(&mockBackupService{}, &mockReportBuilder{err: apperrors.ErrStorage}, ""))

		rec := doRawRequest(r, "GET", "/report.xlsx", nil, "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}
