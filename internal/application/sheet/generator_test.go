package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/workflow/port"
)

type fakeClient struct {
	mu    sync.Mutex
	calls int
	raw   string
	err   error
	block chan struct{}
}

func (f *fakeClient) Generate(ctx context.Context, _ *port.GenerationRequest, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.raw, f.err
}

func (f *fakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memoryRepo struct {
	mu     sync.Mutex
	err    error
	sheets []*entity.EducationalSheet
}

func (r *memoryRepo) Create(_ context.Context, s *entity.EducationalSheet) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = "sheet-" + time.Now().Format("150405.000000")
	}
	r.sheets = append(r.sheets, s)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*entity.EducationalSheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sheets {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memoryRepo) ListRecent(_ context.Context, limit int) ([]*entity.EducationalSheet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.sheets) {
		limit = len(r.sheets)
	}
	return r.sheets[:limit], nil
}

func rawSheet(t *testing.T) string {
	t.Helper()
	b, err := json.Marshal(sampleContent())
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func newTestGenerator(client port.GenerationClient, repo *memoryRepo, gate GenerationGate) *Generator {
	var gw *PersistenceGateway
	if repo != nil {
		gw = NewPersistenceGateway(repo, PersistenceOptions{})
	}
	return NewGenerator(NewRequestBuilder(nil), client, gate, gw, GeneratorConfig{})
}

func TestGenerateSuccessStoresSheet(t *testing.T) {
	client := &fakeClient{raw: rawSheet(t)}
	repo := &memoryRepo{}
	g := newTestGenerator(client, repo, NewLocalGate(time.Minute))

	res, err := g.Generate(context.Background(), GenerateInput{Request: validRequest(""), Credential: "k", Session: "s1"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Stored || res.SheetID == "" {
		t.Fatalf("expected stored sheet, got %+v", res)
	}
	if res.Request.Language != entity.LanguageFrench {
		t.Fatalf("default language not applied: %q", res.Request.Language)
	}
	if res.TotalMinutes != 45 || res.Durations[entity.PhaseAnalyse] != 14 {
		t.Fatalf("unexpected durations: %d %v", res.TotalMinutes, res.Durations)
	}
	if *res.Content != *sampleContent() {
		t.Fatalf("unexpected content")
	}
}

func TestGeneratePersistenceFailureKeepsContent(t *testing.T) {
	raw := rawSheet(t)
	ok, err := newTestGenerator(&fakeClient{raw: raw}, &memoryRepo{}, nil).
		Generate(context.Background(), GenerateInput{Request: validRequest("fr"), Credential: "k"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	failed, err := newTestGenerator(&fakeClient{raw: raw}, &memoryRepo{err: errors.New("db down")}, nil).
		Generate(context.Background(), GenerateInput{Request: validRequest("fr"), Credential: "k"})
	if err != nil {
		t.Fatalf("persistence failure must not surface: %v", err)
	}
	if failed.Stored || failed.SheetID != "" {
		t.Fatalf("failed write reported as stored: %+v", failed)
	}
	if *failed.Content != *ok.Content || failed.TotalMinutes != ok.TotalMinutes {
		t.Fatalf("user-visible outcome changed by persistence failure")
	}
}

func TestGenerateValidationMakesNoCall(t *testing.T) {
	client := &fakeClient{raw: rawSheet(t)}
	g := newTestGenerator(client, &memoryRepo{}, nil)

	req := validRequest("fr")
	req.Lecon = ""
	_, err := g.Generate(context.Background(), GenerateInput{Request: req, Credential: "k"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields["lecon"] == "" {
		t.Fatalf("expected lecon validation error, got %v", err)
	}
	if client.Calls() != 0 {
		t.Fatalf("generation service called %d times", client.Calls())
	}
}

func TestGenerateUsesDefaultCredential(t *testing.T) {
	client := &fakeClient{raw: rawSheet(t)}
	g := NewGenerator(NewRequestBuilder(nil), client, nil, nil, GeneratorConfig{DefaultCredential: "configured"})
	if _, err := g.Generate(context.Background(), GenerateInput{Request: validRequest("ar")}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if client.Calls() != 1 {
		t.Fatalf("expected one call, got %d", client.Calls())
	}
}

func TestGenerateUpstreamAndMalformed(t *testing.T) {
	upstream := &port.UpstreamError{Provider: "gemini", StatusCode: 500, Body: "boom"}
	_, err := newTestGenerator(&fakeClient{err: upstream}, nil, nil).
		Generate(context.Background(), GenerateInput{Request: validRequest("fr"), Credential: "k"})
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if app := ToAppError(err); app.HTTPStatus != 502 || app.Message != "failed to generate sheet" {
		t.Fatalf("unexpected mapping: %+v", app)
	}

	_, err = newTestGenerator(&fakeClient{raw: "pas de JSON"}, nil, nil).
		Generate(context.Background(), GenerateInput{Request: validRequest("fr"), Credential: "k"})
	var me *MalformedResponse
	if !errors.As(err, &me) {
		t.Fatalf("expected MalformedResponse, got %v", err)
	}
	if app := ToAppError(err); app.HTTPStatus != 502 || app.Message != "failed to generate sheet" {
		t.Fatalf("unexpected mapping: %+v", app)
	}
}

func TestGenerateRejectsConcurrentSessionSubmission(t *testing.T) {
	client := &fakeClient{raw: rawSheet(t), block: make(chan struct{})}
	g := newTestGenerator(client, nil, NewLocalGate(time.Minute))

	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), GenerateInput{Request: validRequest("fr"), Credential: "k", Session: "same"})
		done <- err
	}()
	for client.Calls() == 0 {
		time.Sleep(time.Millisecond)
	}

	_, err := g.Generate(context.Background(), GenerateInput{Request: validRequest("fr"), Credential: "k", Session: "same"})
	if !errors.Is(err, ErrGenerationInProgress) {
		t.Fatalf("expected ErrGenerationInProgress, got %v", err)
	}
	if app := ToAppError(err); app.HTTPStatus != 409 {
		t.Fatalf("expected 409, got %d", app.HTTPStatus)
	}

	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
	if _, err := g.Generate(context.Background(), GenerateInput{Request: validRequest("fr"), Credential: "k", Session: "same"}); err != nil {
		t.Fatalf("gate not released: %v", err)
	}
}
