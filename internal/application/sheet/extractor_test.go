package sheet

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"lesson-sheet-api/internal/domain/entity"
)

func sampleContent() *entity.SheetContent {
	c := &entity.SheetContent{}
	for _, p := range entity.Phases {
		c.SetPhase(p, entity.PhaseContent{
			ActivitesMaitre: "Le maître présente " + string(p),
			ActivitesEleve:  "L'élève répond {" + string(p) + "}",
			Contenu:         "",
		})
	}
	return c
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestExtractSheetContentRoundTrip(t *testing.T) {
	want := sampleContent()
	raw := mustJSON(t, want)

	got, err := ExtractSheetContent(raw)
	if err != nil {
		t.Fatalf("ExtractSheetContent: %v", err)
	}
	if *got != *want {
		t.Fatalf("content mismatch:\n got=%+v\nwant=%+v", got, want)
	}

	again, err := ExtractSheetContent(mustJSON(t, got))
	if err != nil || *again != *got {
		t.Fatalf("extraction is not idempotent: %v", err)
	}
}

func TestExtractSheetContentFencedAndWrapped(t *testing.T) {
	want := sampleContent()
	body := mustJSON(t, want)

	inputs := map[string]string{
		"json fence": "```json\n" + body + "\n```",
		"bare fence": "```\n" + body + "\n```",
		"prose":      "Voici la fiche demandée :\n" + body + "\nBonne séance !",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractSheetContent(in)
			if err != nil {
				t.Fatalf("ExtractSheetContent: %v", err)
			}
			if *got != *want {
				t.Fatalf("content mismatch: %+v", got)
			}
		})
	}
}

func TestExtractSheetContentIgnoresExtraKeys(t *testing.T) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(mustJSON(t, sampleContent())), &obj); err != nil {
		t.Fatal(err)
	}
	obj["remarques"] = "hors schéma"
	if _, err := ExtractSheetContent(mustJSON(t, obj)); err != nil {
		t.Fatalf("extra top-level keys should be ignored: %v", err)
	}
}

func TestExtractSheetContentMalformed(t *testing.T) {
	full := mustJSON(t, sampleContent())

	var missingPhase map[string]any
	_ = json.Unmarshal([]byte(full), &missingPhase)
	delete(missingPhase, "analyse")

	var nullField map[string]any
	_ = json.Unmarshal([]byte(full), &nullField)
	nullField["revision"].(map[string]any)["contenu"] = nil

	var numberField map[string]any
	_ = json.Unmarshal([]byte(full), &numberField)
	numberField["evaluation"].(map[string]any)["activites_eleve"] = 3

	cases := map[string]string{
		"empty":         "   ",
		"no braces":     "Désolé, je ne peux pas répondre.",
		"unbalanced":    `{"revision": {"activites_maitre": "x"`,
		"array":         `[1,2,3]`,
		"missing phase": mustJSON(t, missingPhase),
		"null field":    mustJSON(t, nullField),
		"number field":  mustJSON(t, numberField),
		"phase string":  strings.Replace(full, `"consolidation":{`, `"consolidation":"x","ignored":{`, 1),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractSheetContent(in)
			var me *MalformedResponse
			if !errors.As(err, &me) {
				t.Fatalf("expected MalformedResponse, got %v", err)
			}
			if me.Raw != in {
				t.Fatalf("raw text not preserved")
			}
		})
	}
}

func TestDecodeSheetContent(t *testing.T) {
	full := mustJSON(t, sampleContent())
	got, err := DecodeSheetContent(json.RawMessage(full))
	if err != nil {
		t.Fatalf("complete content rejected: %v", err)
	}
	if mustJSON(t, got) != full {
		t.Fatalf("content changed: %s", mustJSON(t, got))
	}

	cases := []struct {
		name   string
		raw    string
		fields []string
	}{
		{"absent", ``, []string{"content"}},
		{"null", `null`, []string{"content"}},
		{"array", `[]`, []string{"content"}},
		{"empty object", `{}`, []string{"content.revision", "content.evaluation"}},
		{
			"partial phase",
			`{"revision":{"activites_maitre":"only"}}`,
			[]string{"content.revision.activites_eleve", "content.revision.contenu", "content.impregnation"},
		},
		{
			"null field",
			strings.Replace(full, `"contenu":""`, `"contenu":null`, 1),
			[]string{"content.revision.contenu"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeSheetContent(json.RawMessage(tc.raw))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			for _, f := range tc.fields {
				if _, ok := ve.Fields[f]; !ok {
					t.Fatalf("missing field %q in %v", f, ve.Fields)
				}
			}
		})
	}
}
