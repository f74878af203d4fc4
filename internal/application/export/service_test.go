package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"lesson-sheet-api/internal/domain/entity"
	apperrors "lesson-sheet-api/pkg/errors"
)

func exportRequest(format entity.ExportFormat, autoPrint bool) Request {
	c := &entity.SheetContent{}
	for _, p := range entity.Phases {
		c.SetPhase(p, entity.PhaseContent{ActivitesMaitre: "m", ActivitesEleve: "e", Contenu: "c"})
	}
	return Request{
		Sheet: &entity.SheetRequest{
			Niveau: "CM1", Activite: "Calcul", Lecon: "Fractions",
			ObjectifSpecifique: "Comparer", Duree: "45 minutes", Language: entity.LanguageFrench,
		},
		Content:   c,
		Format:    format,
		AutoPrint: autoPrint,
	}
}

func TestServiceCreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Minute)
	ctx := context.Background()

	a, err := svc.Create(ctx, exportRequest(entity.ExportFormatHTML, true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ContentType != ContentTypeHTML || a.Format != entity.ExportFormatHTML {
		t.Fatalf("unexpected artifact: %+v", a)
	}
	if !bytes.Contains(a.Data, []byte("window.print")) {
		t.Fatal("auto print should be embedded")
	}
	if !a.ExpiresAt.After(a.CreatedAt) {
		t.Fatal("expiry must follow creation")
	}

	got, err := svc.Get(ctx, a.ID)
	if err != nil || got.ID != a.ID {
		t.Fatalf("get: %+v %v", got, err)
	}

	x, err := svc.Create(ctx, exportRequest(entity.ExportFormatXLSX, false))
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	if x.ContentType != ContentTypeXLSX || !bytes.HasPrefix(x.Data, []byte("PK")) {
		t.Fatalf("unexpected workbook artifact: %s", x.ContentType)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Put(ctx, &entity.ExportArtifact{ID: "a"}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "a"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	now = now.Add(time.Minute)
	_, err := store.Get(ctx, "a")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeExportNotFound {
		t.Fatalf("expected not found after expiry, got %v", err)
	}
}
