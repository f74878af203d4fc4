package sheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"lesson-sheet-api/internal/domain/entity"
)

// DefaultLessonMinutes 时长字符串无法解析时采用的课时
const DefaultLessonMinutes = 60

// phaseWeights 各阶段占比，顺序与 entity.Phases 一致
var phaseWeights = map[entity.Phase]float64{
	entity.PhaseRevision:      0.15,
	entity.PhaseImpregnation:  0.20,
	entity.PhaseAnalyse:       0.30,
	entity.PhaseConsolidation: 0.25,
	entity.PhaseEvaluation:    0.10,
}

var (
	digitRun    = regexp.MustCompile(`\d+`)
	compactHour = regexp.MustCompile(`(?i)\d+\s*h(\s*\d+|\b|$)`)
)

// digitNormalizer 将阿拉伯-印度数字与波斯数字转为 ASCII
var digitNormalizer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// ParseTotalMinutes 解析自由格式的时长字符串。
// 含小时关键字时第一个数字为小时、第二个（可选）为分钟；否则第一个数字为分钟。
// 无数字时返回 DefaultLessonMinutes。
func ParseTotalMinutes(duree string) int {
	s := digitNormalizer.Replace(strings.TrimSpace(duree))
	runs := digitRun.FindAllString(s, -1)
	if len(runs) == 0 {
		return DefaultLessonMinutes
	}

	first, err := strconv.Atoi(runs[0])
	if err != nil {
		return DefaultLessonMinutes
	}
	if !mentionsHours(s) && !leadingCompactHour(s) {
		return first
	}

	total := first * 60
	if len(runs) > 1 {
		if m, err := strconv.Atoi(runs[1]); err == nil {
			total += m
		}
	}
	return total
}

func mentionsHours(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range hourKeywords() {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// leadingCompactHour 只有 <n>h 从第一个数字开始时才按小时解析，
// 例如 "1h30"；"90 minutes (1h30)" 中第一个数字仍是分钟
func leadingCompactHour(s string) bool {
	loc := compactHour.FindStringIndex(s)
	if loc == nil {
		return false
	}
	first := digitRun.FindStringIndex(s)
	return first != nil && first[0] == loc[0]
}

// AllocateDurations 按固定比例切分总时长，各阶段独立四舍五入，不做差额修正
func AllocateDurations(totalMinutes int) entity.DurationPlan {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	plan := make(entity.DurationPlan, len(entity.Phases))
	for _, p := range entity.Phases {
		plan[p] = int(math.Round(float64(totalMinutes) * phaseWeights[p]))
	}
	return plan
}

// PlanFor 解析时长并分配到各阶段
func PlanFor(duree string) (int, entity.DurationPlan) {
	total := ParseTotalMinutes(duree)
	return total, AllocateDurations(total)
}
