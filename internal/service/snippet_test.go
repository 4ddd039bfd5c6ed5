package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/model"
)

func newTestSnippetService(t *testing.T) (*SnippetService, *mockSnippetRepo, *mockLanguageRepo) {
	t.Helper()
	snippets := newMockSnippetRepo()
	languages := newMockLanguageRepo()
	svc := NewSnippetService(snippets, languages, testLogger())
	return svc, snippets, languages
}

func seedLanguage(t *testing.T, languages *mockLanguageRepo, name string) *model.Language {
	t.Helper()
	lang := &model.Language{Name: name, ColorCode: "#00ADD8"}
	if err := languages.Create(context.Background(), lang); err != nil {
		t.Fatalf("failed to seed language: %v", err)
	}
	return lang
}

func TestSnippetCreate_EditorSucceeds(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")

	snippet, err := svc.Create(context.Background(), editorActor(), CreateSnippetInput{
		Title:       "hello",
		CodeContent: "fmt.Println(\"hi\")",
		LanguageID:  lang.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if snippet.ID == "" {
		t.Error("expected snippet to have an ID")
	}
	if snippet.UserID != editorActor().ID {
		t.Errorf("UserID = %q, want the actor's ID", snippet.UserID)
	}
}

func TestSnippetCreate_ReaderForbidden(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")

	_, err := svc.Create(context.Background(), readerActor(), CreateSnippetInput{
		Title:       "hello",
		CodeContent: "code",
		LanguageID:  lang.ID,
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Create() by reader error = %v, want ErrForbidden", err)
	}
}

func TestSnippetCreate_UnknownLanguage(t *testing.T) {
	svc, _, _ := newTestSnippetService(t)

	_, err := svc.Create(context.Background(), editorActor(), CreateSnippetInput{
		Title:       "hello",
		CodeContent: "code",
		LanguageID:  "no-such-language",
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Create() with unknown language error = %v, want ErrNotFound", err)
	}
}

func TestSnippetCreate_MissingTitle(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")

	_, err := svc.Create(context.Background(), editorActor(), CreateSnippetInput{
		CodeContent: "code",
		LanguageID:  lang.ID,
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() without title error = %v, want ErrValidation", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "title" {
		t.Errorf("validation field = %q, want title", appErr.Field)
	}
}

func TestSnippetCreate_CodeTooLong(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")

	_, err := svc.Create(context.Background(), editorActor(), CreateSnippetInput{
		Title:       "big",
		CodeContent: strings.Repeat("a", 100001),
		LanguageID:  lang.ID,
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() with oversized code error = %v, want ErrValidation", err)
	}
}

func TestSnippetUpdate_OwnerSucceeds(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")
	owner := editorActor()

	created, err := svc.Create(context.Background(), owner, CreateSnippetInput{
		Title:       "before",
		CodeContent: "code",
		LanguageID:  lang.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newTitle := "after"
	updated, err := svc.Update(context.Background(), owner, created.ID, UpdateSnippetInput{
		Title: &newTitle,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "after" {
		t.Errorf("Title = %q, want after", updated.Title)
	}
	if updated.CodeContent != "code" {
		t.Errorf("CodeContent = %q, want unchanged", updated.CodeContent)
	}
}

func TestSnippetUpdate_NonOwnerForbidden(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")

	created, err := svc.Create(context.Background(), editorActor(), CreateSnippetInput{
		Title:       "mine",
		CodeContent: "code",
		LanguageID:  lang.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	other := &model.User{ID: "editor-2", Role: model.RoleEditor}
	newTitle := "stolen"
	_, err = svc.Update(context.Background(), other, created.ID, UpdateSnippetInput{Title: &newTitle})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Update() by non-owner error = %v, want ErrForbidden", err)
	}
}

func TestSnippetUpdate_AdminOverridesOwnership(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")

	created, err := svc.Create(context.Background(), editorActor(), CreateSnippetInput{
		Title:       "editor's",
		CodeContent: "code",
		LanguageID:  lang.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	newTitle := "moderated"
	updated, err := svc.Update(context.Background(), adminActor(), created.ID, UpdateSnippetInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update() by admin error = %v", err)
	}
	if updated.Title != "moderated" {
		t.Errorf("Title = %q, want moderated", updated.Title)
	}
}

func TestSnippetUpdate_DetachLanguage(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")
	owner := editorActor()

	created, err := svc.Create(context.Background(), owner, CreateSnippetInput{
		Title:       "tagged",
		CodeContent: "code",
		LanguageID:  lang.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	empty := ""
	updated, err := svc.Update(context.Background(), owner, created.ID, UpdateSnippetInput{LanguageID: &empty})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.LanguageID != "" {
		t.Errorf("LanguageID = %q, want empty after detach", updated.LanguageID)
	}
}

func TestSnippetUpdate_UnknownLanguage(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")
	owner := editorActor()

	created, err := svc.Create(context.Background(), owner, CreateSnippetInput{
		Title:       "tagged",
		CodeContent: "code",
		LanguageID:  lang.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	missing := "no-such-language"
	_, err = svc.Update(context.Background(), owner, created.ID, UpdateSnippetInput{LanguageID: &missing})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() with unknown language error = %v, want ErrNotFound", err)
	}
}

func TestSnippetDelete_OwnerWithReaderRoleStillOwns(t *testing.T) {
	svc, snippets, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")

	// Created as an editor, then demoted. Ownership, not role, governs
	// mutation of existing snippets.
	author := editorActor()
	created, err := svc.Create(context.Background(), author, CreateSnippetInput{
		Title:       "legacy",
		CodeContent: "code",
		LanguageID:  lang.ID,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	demoted := &model.User{ID: author.ID, Role: model.RoleUser}
	if err := svc.Delete(context.Background(), demoted, created.ID); err != nil {
		t.Fatalf("Delete() by demoted owner error = %v", err)
	}

	if _, err := snippets.GetByID(context.Background(), created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("snippet after delete: error = %v, want ErrNotFound", err)
	}
}

func TestSnippetDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestSnippetService(t)

	err := svc.Delete(context.Background(), adminActor(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSnippetList_ClampsLimit(t *testing.T) {
	svc, _, languages := newTestSnippetService(t)
	lang := seedLanguage(t, languages, "Go")

	for i := 0; i < 25; i++ {
		_, err := svc.Create(context.Background(), editorActor(), CreateSnippetInput{
			Title:       "bulk",
			CodeContent: "code",
			LanguageID:  lang.ID,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	snippets, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(snippets) != DefaultListLimit {
		t.Errorf("List(limit=0) returned %d snippets, want default %d", len(snippets), DefaultListLimit)
	}
}
