package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/bulk"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/content"
	"github.com/autophileaozora/smk-kristen5-website-sub003/internal/domain"
	"github.com/google/uuid"
)

const (
	adminID  = "3e0f9c2a-6b7d-4f11-9c3e-0000000000a1"
	authorID = "3e0f9c2a-6b7d-4f11-9c3e-0000000000b2"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PORTAL_STORAGE_PROVIDER", "sqlite")
	t.Setenv("PORTAL_STORAGE_DSN", "file:"+filepath.Join(dir, "portal.db"))
	t.Setenv("PORTAL_LOG_PROVIDER", "noop")
	t.Setenv("PORTAL_NOTIFY_SENDER", "memory")
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestImportThenApprove(t *testing.T) {
	dir := setupEnv(t)
	source := filepath.Join(dir, "notice.md")
	markdown := "---\ntitle: Exam week\ntype: announcement\nstatus: published\n---\n\nBring your student card.\n"
	if err := os.WriteFile(source, []byte(markdown), 0o600); err != nil {
		t.Fatalf("write markdown: %v", err)
	}

	out, err := runCLI(t, "import", "-actor", authorID, "-role", "contributor", "-file", source)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var item content.Item
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatalf("decode import output: %v (%s)", err, out)
	}
	if item.Status != domain.StatusDraft || item.Title != "Exam week" {
		t.Fatalf("expected imported draft, got %+v", item)
	}

	out, err = runCLI(t, "approve", "-actor", adminID, "-role", "administrator", "-id", item.ID.String())
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !strings.Contains(out, "ok") {
		t.Fatalf("unexpected approve output %q", out)
	}

	if _, err := runCLI(t, "approve", "-actor", adminID, "-role", "administrator", "-id", item.ID.String()); err == nil {
		t.Fatalf("expected second approve to fail")
	}
	if _, err := runCLI(t, "delete", "-actor", authorID, "-role", "contributor", "-id", item.ID.String()); err == nil {
		t.Fatalf("expected author delete of a published item to fail")
	}
}

func TestBulkDeleteReportsPerItemOutcome(t *testing.T) {
	dir := setupEnv(t)
	source := filepath.Join(dir, "menu.md")
	if err := os.WriteFile(source, []byte("---\ntitle: Canteen menu\n---\n\nRice and soup.\n"), 0o600); err != nil {
		t.Fatalf("write markdown: %v", err)
	}
	out, err := runCLI(t, "import", "-actor", authorID, "-role", "contributor", "-file", source)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var item content.Item
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatalf("decode import output: %v", err)
	}

	missing := uuid.NewString()
	out, err = runCLI(t, "bulk-delete", "-actor", adminID, "-role", "administrator", "-ids", item.ID.String()+","+missing)
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	var report bulk.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v (%s)", err, out)
	}
	if len(report.Results) != 2 || report.Results[1].Outcome != bulk.OutcomeNotFound {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "archive"); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}
