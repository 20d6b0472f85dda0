package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("TASKSVC_DB_DSN", filepath.Join(dir, "tasks.db"))
	t.Setenv("TASKSVC_BCRYPT_COST", "4")
	t.Setenv("TASKSVC_LOG_OUTPUT", "discard")

	envFile := filepath.Join(dir, "missing.env")
	ctx := context.Background()

	var out bytes.Buffer
	if err := run(ctx, []string{"--username", "root", "--password", "s3cret", "--env-file", envFile}, &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "created admin root") {
		t.Errorf("first run output = %q", out.String())
	}

	out.Reset()
	if err := run(ctx, []string{"--username", "root", "--password", "other", "--env-file", envFile}, &out); err != nil {
		t.Fatalf("second run() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "admin root already exists") {
		t.Errorf("second run output = %q", out.String())
	}
}

func TestRun_NoPassword(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("TASKSVC_DB_DSN", filepath.Join(dir, "tasks.db"))
	t.Setenv("TASKSVC_LOG_OUTPUT", "discard")
	t.Setenv(passwordEnv, "")

	err := run(context.Background(), []string{"--env-file", filepath.Join(dir, "missing.env")}, &bytes.Buffer{})
	if !errors.Is(err, errNoPassword) {
		t.Errorf("run() error = %v, want %v", err, errNoPassword)
	}
}
