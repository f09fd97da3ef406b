package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nexus-ai-chat/internal/domain"
)

func TestDiskStore_SaveReturnsPublicURL(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "http://localhost:8080/")
	if err != nil {
		t.Fatal(err)
	}

	url, err := s.Save(context.Background(), "user-1", "photo.PNG", []byte("img-bytes"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/media/user-1/") {
		t.Fatalf("unexpected url %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Fatalf("extension not normalized: %q", url)
	}

	rel := strings.TrimPrefix(url, "http://localhost:8080/media/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "img-bytes" {
		t.Fatal("stored bytes differ")
	}
}

func TestDiskStore_GuestUploadsGoToGuestDir(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "http://x")
	if err != nil {
		t.Fatal(err)
	}
	url, err := s.Save(context.Background(), "", "a.jpg", []byte{1})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(url, "/media/guest/") {
		t.Fatalf("guest upload not under guest/: %q", url)
	}
}

func TestDiskStore_RejectsEmptyAndOversized(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "http://x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(context.Background(), "u", "a.png", nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("empty upload must be rejected, got %v", err)
	}

	big := make([]byte, maxUploadBytes+1)
	_, err = s.Save(context.Background(), "u", "a.png", big)
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("oversized upload must fail with PersistenceError, got %v", err)
	}
}
