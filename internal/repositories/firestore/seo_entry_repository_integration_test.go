//go:build integration

package firestore

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"testing"
	"time"

	domain "github.com/absign/storefront/internal/domain"
	pconfig "github.com/absign/storefront/internal/platform/config"
	pfirestore "github.com/absign/storefront/internal/platform/firestore"
	"github.com/absign/storefront/internal/repositories"
)

const firestoreEmulatorImage = "gcr.io/google.com/cloudsdktool/cloud-sdk:emulators"

func TestSeoEntryRepositoryIntegration(t *testing.T) {
	provider := emulatorProvider(t, "seo-entries-test")
	repo, err := NewSeoEntryRepository(provider)
	if err != nil {
		t.Fatalf("new seo entry repository: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	entry := domain.SeoEntry{
		Slug:      "about",
		Title:     "About us",
		ExtraMeta: []domain.MetaTag{{Name: "robots", Content: "noindex"}},
	}
	if _, err := repo.Save(ctx, "", entry); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.FindBySlug(ctx, "about", false)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Title != "About us" || len(got.ExtraMeta) != 1 || got.ExtraMeta[0].Name != "robots" {
		t.Fatalf("unexpected entry %+v", got)
	}

	if _, err := repo.Save(ctx, "", domain.SeoEntry{Slug: "contact"}); err != nil {
		t.Fatalf("save contact: %v", err)
	}
	if _, err := repo.Save(ctx, "about", domain.SeoEntry{Slug: "contact"}); !repositories.IsConflict(err) {
		t.Fatalf("expected slug conflict, got %v", err)
	}

	if err := repo.SoftDelete(ctx, "about", time.Now()); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := repo.FindBySlug(ctx, "about", false); !repositories.IsNotFound(err) {
		t.Fatalf("expected trashed entry hidden, got %v", err)
	}
	trashed, err := repo.List(ctx, repositories.SeoEntryListFilter{OnlyDeleted: true})
	if err != nil || len(trashed) != 1 {
		t.Fatalf("expected one trashed entry, got %v err=%v", trashed, err)
	}
	if err := repo.Restore(ctx, "about", time.Now()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if _, err := repo.Save(ctx, "about", domain.SeoEntry{Slug: "about-us", Title: "Renamed"}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := repo.FindBySlug(ctx, "about", true); !repositories.IsNotFound(err) {
		t.Fatalf("expected old slug removed, got %v", err)
	}
	if err := repo.ForceDelete(ctx, "about-us"); err != nil {
		t.Fatalf("force delete: %v", err)
	}
}

func emulatorProvider(t *testing.T, project string) *pfirestore.Provider {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available: " + err.Error())
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("allocate port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	out, err := exec.Command("docker", "run", "-d", "--rm",
		"-p", fmt.Sprintf("%d:8080", port),
		firestoreEmulatorImage,
		"gcloud", "beta", "emulators", "firestore", "start",
		"--host-port=0.0.0.0:8080", "--quiet",
	).CombinedOutput()
	if err != nil {
		t.Fatalf("start firestore emulator: %v - %s", err, out)
	}
	containerID := strings.TrimSpace(string(out))
	t.Cleanup(func() { _ = exec.Command("docker", "stop", containerID).Run() })

	endpoint := fmt.Sprintf("127.0.0.1:%d", port)
	deadline := time.Now().Add(30 * time.Second)
	for {
		conn, err := net.DialTimeout("tcp", endpoint, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("firestore emulator at %s not ready", endpoint)
		}
		time.Sleep(200 * time.Millisecond)
	}

	provider := pfirestore.NewProvider(pconfig.FirestoreConfig{ProjectID: project, EmulatorHost: endpoint})
	t.Cleanup(func() { _ = provider.Close() })
	return provider
}
