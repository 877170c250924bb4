package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"fintrack/internal/backup"
)

// PassphraseHeader carries the passphrase used to seal or open a backup.
const PassphraseHeader = "X-Backup-Passphrase"

// maxBackupSize bounds the restore request body.
const maxBackupSize = 64 << 20

// BackupServicer is the backup behaviour the HTTP layer needs.
type BackupServicer interface {
	Export(ctx context.Context) (*backup.Bundle, error)
	Restore(ctx context.Context, b *backup.Bundle) (*backup.RestoreResult, error)
	Wipe(ctx context.Context) error
}

// ReportBuilder builds the XLSX report.
type ReportBuilder interface {
	Build(ctx context.Context) (*excelize.File, error)
}

// BackupHandler handles backup, restore, wipe and report requests.
type BackupHandler struct {
	backupService     BackupServicer
	reports           ReportBuilder
	defaultPassphrase string
}

// NewBackupHandler creates a new BackupHandler. defaultPassphrase seals
// exports and opens restores when a request does not send its own.
func NewBackupHandler(backupService BackupServicer, reports ReportBuilder, defaultPassphrase string) *BackupHandler {
	return &BackupHandler{backupService: backupService, reports: reports, defaultPassphrase: defaultPassphrase}
}

// RestoreResponse reports what a restore created.
type RestoreResponse struct {
	Restored backup.RestoreResult `json:"restored"`
}

func (h *BackupHandler) passphrase(c *gin.Context) string {
	if p := c.GetHeader(PassphraseHeader); p != "" {
		return p
	}
	return h.defaultPassphrase
}

// Export handles downloading a backup
// @Summary     Export a backup
// @Description Download every record as a JSON bundle, sealed with AES-256-GCM when a passphrase is configured or sent
// @Tags        backup
// @Produce     json
// @Produce     application/octet-stream
// @Param       X-Backup-Passphrase header string false "Passphrase to seal the bundle with"
// @Success     200 {object} backup.Bundle "Backup bundle"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /backup [get]
func (h *BackupHandler) Export(c *gin.Context) {
	bundle, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	passphrase := h.passphrase(c)
	contentType, ext := "application/json", "json"
	if passphrase != "" {
		contentType, ext = "application/octet-stream", "ftbk"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"fintrack_%s.%s\"",
		bundle.Metadata.ExportedAt.Format("20060102_150405"), ext))
	c.Status(http.StatusOK)
	if err := backup.Encode(c.Writer, bundle, passphrase); err != nil {
		_ = c.Error(err)
	}
}

// Restore handles restoring a backup
// @Summary     Restore a backup
// @Description Replace the whole ledger with the contents of a bundle. Nothing changes if the bundle is rejected.
// @Tags        backup
// @Accept      json
// @Accept      application/octet-stream
// @Produce     json
// @Param       X-Backup-Passphrase header string        false "Passphrase for a sealed bundle"
// @Param       request             body   backup.Bundle true  "Backup bundle"
// @Success     200 {object} RestoreResponse "Backup restored"
// @Failure     400 {object} ErrorResponse "Invalid or unsupported bundle"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /backup/restore [post]
func (h *BackupHandler) Restore(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupSize)
	bundle, err := backup.Decode(body, h.passphrase(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.backupService.Restore(c.Request.Context(), bundle)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, RestoreResponse{Restored: *result})
}

// Wipe handles deleting all data
// @Summary     Delete all data
// @Description Delete every account, transaction and income group
// @Tags        backup
// @Produce     json
// @Success     200 {object} MessageResponse "Ledger wiped"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /data [delete]
func (h *BackupHandler) Wipe(c *gin.Context) {
	if err := h.backupService.Wipe(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "All data deleted"})
}

// Report handles downloading the XLSX report
// @Summary     Download the XLSX report
// @Description Workbook with account balances, income group summaries and transaction details
// @Tags        backup
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success     200 {file}   file "Workbook"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /report.xlsx [get]
func (h *BackupHandler) Report(c *gin.Context) {
	f, err := h.reports.Build(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"fintrack_%s.xlsx\"",
		time.Now().Format("20060102")))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
