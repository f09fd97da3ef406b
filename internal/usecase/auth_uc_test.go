package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/infra/logging"
)

func newAuthRig() (*AuthSession, *memIdentityRepo, *memSessionRepo) {
	ids := newMemIdentityRepo()
	sessions := newMemSessionRepo()
	return NewAuthSession(ids, sessions, logging.NewNop()), ids, sessions
}

func TestAuth_SignUpThenSignIn(t *testing.T) {
	a, _, _ := newAuthRig()
	ctx := context.Background()

	id, err := a.SignUp(ctx, "Ada@Example.com", "secret1", "Ada")
	if err != nil {
		t.Fatal(err)
	}
	if id.Email != "ada@example.com" {
		t.Fatalf("email must be normalized, got %q", id.Email)
	}
	if a.Phase() != PhaseSignedIn {
		t.Fatalf("phase after sign-up: %v", a.Phase())
	}

	a.SignOut()
	got, err := a.SignIn(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != id.ID {
		t.Fatal("sign-in resolved a different identity")
	}
}

func TestAuth_SignUpRejectsBadInputAndDuplicates(t *testing.T) {
	a, _, _ := newAuthRig()
	ctx := context.Background()

	if _, err := a.SignUp(ctx, "not-an-email", "secret1", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if _, err := a.SignUp(ctx, "a@b.c", "short", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("short password must be rejected, got %v", err)
	}

	if _, err := a.SignUp(ctx, "a@b.c", "secret1", ""); err != nil {
		t.Fatal(err)
	}
	a.SignOut()
	if _, err := a.SignUp(ctx, "a@b.c", "secret2", ""); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
	if a.Phase() != PhaseSignedOut {
		t.Fatal("failed sign-up must leave the session signed out")
	}
}

func TestAuth_SignInWrongPassword(t *testing.T) {
	a, _, _ := newAuthRig()
	ctx := context.Background()
	if _, err := a.SignUp(ctx, "a@b.c", "secret1", ""); err != nil {
		t.Fatal(err)
	}
	a.SignOut()

	if _, err := a.SignIn(ctx, "a@b.c", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.SignIn(ctx, "nobody@b.c", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email must read as bad credentials, got %v", err)
	}
}

func TestAuth_SignOutClearsSummariesSynchronously(t *testing.T) {
	a, _, sessions := newAuthRig()
	ctx := context.Background()

	id, err := a.SignUp(ctx, "a@b.c", "secret1", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sessions.Create(ctx, id.ID, "chat one"); err != nil {
		t.Fatal(err)
	}
	if err := a.RefreshSummaries(ctx); err != nil {
		t.Fatal(err)
	}
	if len(a.Summaries()) != 1 {
		t.Fatal("summary list not loaded")
	}

	a.SignOut()
	// the list must already be empty when SignOut returns
	if len(a.Summaries()) != 0 {
		t.Fatal("summaries must clear before SignOut returns")
	}
	if a.Identity() != nil || a.Phase() != PhaseSignedOut {
		t.Fatal("identity must be dropped")
	}
}

func TestAuth_IdentityListenersRunSynchronously(t *testing.T) {
	a, _, _ := newAuthRig()
	ctx := context.Background()

	var seen []*model.Identity
	a.OnIdentityChange(func(id *model.Identity) { seen = append(seen, id) })

	id, err := a.SignUp(ctx, "a@b.c", "secret1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] == nil || seen[0].ID != id.ID {
		t.Fatalf("sign-up must notify before returning: %v", seen)
	}

	a.SignOut()
	if len(seen) != 2 || seen[1] != nil {
		t.Fatalf("sign-out must notify with nil before returning: %v", seen)
	}
}

func TestAuth_DeleteSessionChecksOwnership(t *testing.T) {
	a, _, sessions := newAuthRig()
	ctx := context.Background()

	id, err := a.SignUp(ctx, "a@b.c", "secret1", "")
	if err != nil {
		t.Fatal(err)
	}
	mine, err := sessions.Create(ctx, id.ID, "mine")
	if err != nil {
		t.Fatal(err)
	}
	theirs, err := sessions.Create(ctx, "other", "theirs")
	if err != nil {
		t.Fatal(err)
	}

	if err := a.DeleteSession(ctx, theirs); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete must read as not found, got %v", err)
	}
	if err := a.DeleteSession(ctx, mine); err != nil {
		t.Fatal(err)
	}
	if _, err := sessions.Find(ctx, mine); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("session row must be gone")
	}
	if len(a.Summaries()) != 0 {
		t.Fatal("list must refresh after delete")
	}

	a.SignOut()
	if err := a.DeleteSession(ctx, mine); !errors.Is(err, domain.ErrNotSignedIn) {
		t.Fatalf("guest delete must fail, got %v", err)
	}
}

func TestAuth_RestoreFromStoredIdentity(t *testing.T) {
	a, _, _ := newAuthRig()
	ctx := context.Background()

	id, err := a.SignUp(ctx, "a@b.c", "secret1", "Ada")
	if err != nil {
		t.Fatal(err)
	}
	a.SignOut()

	if err := a.Restore(ctx, id.ID); err != nil {
		t.Fatal(err)
	}
	if a.Phase() != PhaseSignedIn || a.Identity() == nil || a.Identity().ID != id.ID {
		t.Fatal("restore must re-establish the signed-in state")
	}
	if err := a.Restore(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown id must fail, got %v", err)
	}

	// background summary load must settle without racing the test
	time.Sleep(10 * time.Millisecond)
}
