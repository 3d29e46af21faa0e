package fsstorage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-press/internal/adapters/fsstorage"
	"github.com/goliatone/go-press/pkg/interfaces"
)

func TestAdapterWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	adapter := fsstorage.New(root)
	ctx := context.Background()

	payload := "<html><body>hello</body></html>"
	if _, err := adapter.Exec(ctx, "generator.write", "dist/2024/first/index.html", strings.NewReader(payload)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "dist", "2024", "first", "index.html"))
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if string(onDisk) != payload {
		t.Fatalf("unexpected file contents: %q", onDisk)
	}

	rows, err := adapter.Query(ctx, "generator.read", "dist/2024/first/index.html")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("expected a row for existing file")
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("unexpected read contents: %q", data)
	}
}

func TestAdapterReadMissingFileReturnsNoRows(t *testing.T) {
	adapter := fsstorage.New(t.TempDir())

	rows, err := adapter.Query(context.Background(), "generator.read", "dist/manifest.json")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	defer rows.Close()
	if rows.Next() {
		t.Fatal("expected no rows for missing file")
	}
}

func TestAdapterListsArtifacts(t *testing.T) {
	adapter := fsstorage.New(t.TempDir())
	ctx := context.Background()

	files := []string{
		"dist/index.html",
		"dist/2024/first/index.html",
		"dist/assets/site.css",
	}
	for _, name := range files {
		if _, err := adapter.Exec(ctx, "generator.write", name, strings.NewReader("x")); err != nil {
			t.Fatalf("write %s failed: %v", name, err)
		}
	}

	rows, err := adapter.Query(ctx, "generator.list", "dist")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		found[entry] = true
	}
	for _, name := range files {
		if !found[name] {
			t.Fatalf("expected %s in listing, got %v", name, found)
		}
	}
}

func TestAdapterListMissingDirectoryReturnsNoRows(t *testing.T) {
	adapter := fsstorage.New(t.TempDir())

	rows, err := adapter.Query(context.Background(), "generator.list", "dist")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	defer rows.Close()
	if rows.Next() {
		t.Fatal("expected no rows for missing directory")
	}
}

func TestAdapterRemoveSubtree(t *testing.T) {
	root := t.TempDir()
	adapter := fsstorage.New(root)
	ctx := context.Background()

	if _, err := adapter.Exec(ctx, "generator.write", "dist/page/index.html", strings.NewReader("x")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := adapter.Exec(ctx, "generator.remove", "dist"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "dist")); !os.IsNotExist(err) {
		t.Fatalf("expected dist removed, stat returned %v", err)
	}
}

func TestAdapterEnsureDir(t *testing.T) {
	root := t.TempDir()
	adapter := fsstorage.New(root)

	if _, err := adapter.Exec(context.Background(), "generator.ensure_dir", "dist/2024"); err != nil {
		t.Fatalf("ensure_dir failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "dist", "2024"))
	if err != nil {
		t.Fatalf("expected directory created: %v", err)
	}
	if !info.IsDir() {
		t.Fatal("expected a directory")
	}
}

func TestAdapterRejectsEscapingPaths(t *testing.T) {
	adapter := fsstorage.New(t.TempDir())
	ctx := context.Background()

	if _, err := adapter.Exec(ctx, "generator.write", "../evil.html", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for path escaping root")
	}
	if _, err := adapter.Query(ctx, "generator.read", "/etc/passwd"); err == nil {
		t.Fatal("expected error for absolute path")
	}
}

func TestAdapterRejectsUnknownOperations(t *testing.T) {
	adapter := fsstorage.New(t.TempDir())
	ctx := context.Background()

	if _, err := adapter.Exec(ctx, "generator.vacuum", "dist"); err == nil {
		t.Fatal("expected error for unknown exec operation")
	}
	if _, err := adapter.Query(ctx, "generator.stat", "dist"); err == nil {
		t.Fatal("expected error for unknown query operation")
	}
}

func TestAdapterTransactionDelegates(t *testing.T) {
	root := t.TempDir()
	adapter := fsstorage.New(root)

	err := adapter.Transaction(context.Background(), func(tx interfaces.Transaction) error {
		_, err := tx.Exec(context.Background(), "generator.write", "dist/tx.html", strings.NewReader("tx"))
		return err
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "dist", "tx.html")); err != nil {
		t.Fatalf("expected transactional write on disk: %v", err)
	}
}
