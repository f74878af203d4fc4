package sheet

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lesson-sheet-api/internal/domain/entity"
)

func validRequest(lang entity.Language) *entity.SheetRequest {
	return &entity.SheetRequest{
		Niveau:             "4AP",
		Activite:           "Lecture",
		Lecon:              "Le printemps",
		ObjectifSpecifique: "Lire un texte court",
		Duree:              "45 minutes",
		Language:           lang,
	}
}

func TestBuildGenerationRequestFrench(t *testing.T) {
	b := NewRequestBuilder(nil)
	req := validRequest(entity.LanguageFrench)
	req.CompetenceBase = "Lecture courante"

	out, err := b.BuildGenerationRequest(context.Background(), req, "key")
	if err != nil {
		t.Fatalf("BuildGenerationRequest: %v", err)
	}
	if out.Temperature != 0.7 || out.MaxOutputTokens != 4096 || out.ResponseMIMEType != "application/json" {
		t.Fatalf("unexpected generation params: %+v", out)
	}

	ins := out.Instruction
	for _, want := range []string{
		"Réponds UNIQUEMENT avec du JSON valide",
		"\n\nGénère une fiche pédagogique détaillée",
		"Niveau: 4AP",
		"Leçon: Le printemps",
		"Compétence de base: Lecture courante",
		"1. Révision",
		"5. Correction/Évaluation",
		"- Activités du maître",
		`"evaluation": { "activites_maitre"`,
	} {
		if !strings.Contains(ins, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
	if strings.Contains(ins, "Informations supplémentaires") {
		t.Errorf("empty optional field must be omitted")
	}
}

func TestBuildGenerationRequestArabic(t *testing.T) {
	b := NewRequestBuilder(nil)
	req := validRequest(entity.LanguageArabic)
	req.InfosSupplementaires = "قسم مكتظ"

	out, err := b.BuildGenerationRequest(context.Background(), req, "key")
	if err != nil {
		t.Fatalf("BuildGenerationRequest: %v", err)
	}
	for _, want := range []string{"المستوى: 4AP", "معلومات إضافية: قسم مكتظ", "1. المراجعة", "- أنشطة المعلم"} {
		if !strings.Contains(out.Instruction, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
	if strings.Contains(out.Instruction, "الكفاءة الأساسية") {
		t.Errorf("empty optional field must be omitted")
	}
}

func TestBuildGenerationRequestValidation(t *testing.T) {
	b := NewRequestBuilder(nil)
	req := &entity.SheetRequest{Niveau: "4AP", Duree: "  ", Language: "en"}

	_, err := b.BuildGenerationRequest(context.Background(), req, "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, f := range []string{"activite", "lecon", "objectif_specifique", "duree", "language", "credential"} {
		if _, ok := ve.Fields[f]; !ok {
			t.Errorf("missing field error for %q: %v", f, ve.Fields)
		}
	}
	if _, ok := ve.Fields["niveau"]; ok {
		t.Errorf("niveau was provided")
	}
}
