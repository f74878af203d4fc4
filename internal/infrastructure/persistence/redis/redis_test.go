package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"lesson-sheet-api/internal/domain/entity"
	apperrors "lesson-sheet-api/pkg/errors"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewClientWithRedis(rdb, "test:"), mr
}

func TestClientKey(t *testing.T) {
	c, _ := newTestClient(t)
	if got := c.Key("gate", "abc"); got != "test:gate:abc" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestGenerationGate(t *testing.T) {
	c, mr := newTestClient(t)
	gate := NewGenerationGate(c, time.Minute)
	ctx := context.Background()

	token, ok, err := gate.Acquire(ctx, "s1")
	if err != nil || !ok || token == "" {
		t.Fatalf("first acquire: token=%q ok=%v err=%v", token, ok, err)
	}
	_, ok, err = gate.Acquire(ctx, "s1")
	if err != nil || ok {
		t.Fatalf("second acquire should be refused: ok=%v err=%v", ok, err)
	}
	if _, ok, _ = gate.Acquire(ctx, "s2"); !ok {
		t.Fatal("other session should not be blocked")
	}

	if err := gate.Release(ctx, "s1", token); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok, _ = gate.Acquire(ctx, "s1"); !ok {
		t.Fatal("acquire after release should succeed")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ = gate.Acquire(ctx, "s2"); !ok {
		t.Fatal("expired hold should be reclaimed")
	}
}

func TestGenerationGateStaleReleaseKeepsNewHolder(t *testing.T) {
	c, mr := newTestClient(t)
	gate := NewGenerationGate(c, time.Minute)
	ctx := context.Background()

	stale, ok, err := gate.Acquire(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	mr.FastForward(2 * time.Minute)
	current, ok, err := gate.Acquire(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("reacquire after expiry: ok=%v err=%v", ok, err)
	}

	if err := gate.Release(ctx, "s1", stale); err != nil {
		t.Fatalf("stale release: %v", err)
	}
	if got, _ := mr.Get(c.Key("gate", "s1")); got != current {
		t.Fatalf("current hold was removed by a stale release: %q", got)
	}
	if _, ok, _ := gate.Acquire(ctx, "s1"); ok {
		t.Fatal("session should still be held")
	}

	if err := gate.Release(ctx, "s1", current); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists(c.Key("gate", "s1")) {
		t.Fatal("release with the current token should delete the key")
	}
}

func TestExportStore(t *testing.T) {
	c, mr := newTestClient(t)
	store := NewExportStore(c)
	ctx := context.Background()

	in := &entity.ExportArtifact{
		ID:          "e1",
		Format:      entity.ExportFormatHTML,
		ContentType: "text/html; charset=utf-8",
		Filename:    "fiche.html",
		Data:        []byte("<html></html>"),
	}
	if err := store.Put(ctx, in, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Data) != "<html></html>" || got.Filename != "fiche.html" {
		t.Fatalf("unexpected artifact: %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "e1")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeExportNotFound {
		t.Fatalf("expected export not found after ttl, got %v", err)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	c, _ := newTestClient(t)
	l := NewRateLimiter(c)
	ctx := context.Background()
	key := "ip:127.0.0.1:/v1/sheets/generate"

	for i := 0; i < 3; i++ {
		ok, remaining, err := l.Allow(ctx, key, 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("request %d: ok=%v err=%v", i, ok, err)
		}
		if remaining != 2-i {
			t.Fatalf("request %d: remaining=%d", i, remaining)
		}
	}
	ok, _, err := l.Allow(ctx, key, 3, time.Minute)
	if err != nil || ok {
		t.Fatalf("fourth request should be limited: ok=%v err=%v", ok, err)
	}
}

type countingRepo struct {
	sheets []*entity.EducationalSheet
	lists  int
	gets   int
}

func (r *countingRepo) Create(_ context.Context, s *entity.EducationalSheet) error {
	if s.ID == "" {
		s.ID = "id-" + s.Lecon
	}
	r.sheets = append([]*entity.EducationalSheet{s}, r.sheets...)
	return nil
}

func (r *countingRepo) GetByID(_ context.Context, id string) (*entity.EducationalSheet, error) {
	r.gets++
	for _, s := range r.sheets {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperrors.ErrSheetNotFound
}

func (r *countingRepo) ListRecent(_ context.Context, limit int) ([]*entity.EducationalSheet, error) {
	r.lists++
	if limit > len(r.sheets) {
		limit = len(r.sheets)
	}
	return r.sheets[:limit], nil
}

func TestCachedSheetRepository(t *testing.T) {
	c, _ := newTestClient(t)
	inner := &countingRepo{}
	repo := NewCachedSheetRepository(inner, c, time.Minute)
	ctx := context.Background()

	if err := repo.Create(ctx, &entity.EducationalSheet{Lecon: "A", GeneratedContent: []byte(`{}`)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := repo.ListRecent(ctx, 20)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 1 || got[0].Lecon != "A" {
			t.Fatalf("unexpected list: %+v", got)
		}
	}
	if inner.lists != 1 {
		t.Fatalf("expected one backend list, got %d", inner.lists)
	}

	if err := repo.Create(ctx, &entity.EducationalSheet{Lecon: "B", GeneratedContent: []byte(`{}`)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.ListRecent(ctx, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Lecon != "B" {
		t.Fatalf("cache should be invalidated after create: %+v", got)
	}

	for i := 0; i < 2; i++ {
		s, err := repo.GetByID(ctx, "id-A")
		if err != nil || s.Lecon != "A" {
			t.Fatalf("get: %+v %v", s, err)
		}
	}
	if inner.gets != 1 {
		t.Fatalf("expected one backend get, got %d", inner.gets)
	}

	_, err = repo.GetByID(ctx, "missing")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.CodeSheetNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
