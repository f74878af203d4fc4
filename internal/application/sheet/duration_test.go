package sheet

import (
	"testing"

	"lesson-sheet-api/internal/domain/entity"
)

func TestParseTotalMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1 heure 30", 90},
		{"2 heures", 120},
		{"45 minutes", 45},
		{"45", 45},
		{"1h30", 90},
		{"1h", 60},
		{"90 minutes (1h30)", 90},
		{"45 min, soit 0h45", 45},
		{"1 ساعة 15", 75},
		{"٤٥ دقيقة", 45},
		{"", DefaultLessonMinutes},
		{"une séance", DefaultLessonMinutes},
	}
	for _, tc := range cases {
		if got := ParseTotalMinutes(tc.in); got != tc.want {
			t.Errorf("ParseTotalMinutes(%q)=%d want %d", tc.in, got, tc.want)
		}
	}
}

func TestAllocateDurations(t *testing.T) {
	plan := AllocateDurations(100)
	want := map[entity.Phase]int{
		entity.PhaseRevision:      15,
		entity.PhaseImpregnation:  20,
		entity.PhaseAnalyse:       30,
		entity.PhaseConsolidation: 25,
		entity.PhaseEvaluation:    10,
	}
	for p, m := range want {
		if plan[p] != m {
			t.Fatalf("phase %s: got %d want %d", p, plan[p], m)
		}
	}
}

func TestAllocateDurationsRoundsEachPhaseIndependently(t *testing.T) {
	// 50 分钟: 7.5→8, 10, 15, 12.5→13, 5 ；合计 51，不做修正
	plan := AllocateDurations(50)
	if plan[entity.PhaseRevision] != 8 || plan[entity.PhaseConsolidation] != 13 {
		t.Fatalf("unexpected rounding: %v", plan)
	}
	if plan.Total() != 51 {
		t.Fatalf("sum should keep rounding drift, got %d", plan.Total())
	}
}

func TestAllocateDurationsZeroAndNegative(t *testing.T) {
	for _, total := range []int{0, -30} {
		for p, m := range AllocateDurations(total) {
			if m != 0 {
				t.Fatalf("total=%d phase %s got %d", total, p, m)
			}
		}
	}
}

func TestPlanForDefault(t *testing.T) {
	total, plan := PlanFor("")
	if total != 60 {
		t.Fatalf("total=%d", total)
	}
	if plan[entity.PhaseAnalyse] != 18 || plan[entity.PhaseEvaluation] != 6 {
		t.Fatalf("unexpected plan: %v", plan)
	}
}
