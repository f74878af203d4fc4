package sheet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/workflow/node"
)

var subFields = []string{"activites_maitre", "activites_eleve", "contenu"}

// ExtractSheetContent 将模型原始输出解析为完整教案内容。
// 先整体严格解析，失败后仅做一次括号平衡扫描；任何缺失或类型不符都返回 MalformedResponse。
func ExtractSheetContent(raw string) (*entity.SheetContent, error) {
	cleaned := node.StripCodeFence(raw)
	if cleaned == "" {
		return nil, &MalformedResponse{Raw: raw, Reason: "empty output"}
	}

	obj, err := decodeObject(cleaned)
	if err != nil {
		span, ok := node.ExtractJSONObject(cleaned)
		if !ok {
			return nil, &MalformedResponse{Raw: raw, Reason: "no complete JSON object"}
		}
		obj, err = decodeObject(span)
		if err != nil {
			return nil, &MalformedResponse{Raw: raw, Reason: "invalid JSON object", Err: err}
		}
	}

	content, problems := contentFromObject(obj)
	if len(problems) > 0 {
		return nil, &MalformedResponse{Raw: raw, Reason: "incomplete sheet", Err: problemsError(problems)}
	}
	return content, nil
}

func decodeObject(s string) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("top-level value is not an object")
	}
	// 对象之后不允许再有其它内容
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after object")
	}
	return obj, nil
}

// DecodeSheetContent 校验调用方回传的教案内容，规则与模型输出一致：
// 五个阶段及其三个子字段都必须存在且为字符串。问题逐项列在 ValidationError 中。
func DecodeSheetContent(raw json.RawMessage) (*entity.SheetContent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, &ValidationError{Fields: map[string]string{"content": "is required"}}
	}
	obj, err := decodeObject(string(trimmed))
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"content": "must be a JSON object"}}
	}
	content, problems := contentFromObject(obj)
	if len(problems) > 0 {
		fields := make(map[string]string, len(problems))
		for k, v := range problems {
			fields["content."+k] = v
		}
		return nil, &ValidationError{Fields: fields}
	}
	return content, nil
}

// contentFromObject 按阶段顺序取出内容；problems 以 "<phase>" 或 "<phase>.<field>" 为键
func contentFromObject(obj map[string]json.RawMessage) (*entity.SheetContent, map[string]string) {
	var content entity.SheetContent
	problems := make(map[string]string)
	for _, p := range entity.Phases {
		rawPhase, ok := obj[string(p)]
		if !ok {
			problems[string(p)] = "is required"
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(rawPhase, &fields); err != nil || fields == nil {
			problems[string(p)] = "must be an object"
			continue
		}
		values := make(map[string]string, len(subFields))
		for _, name := range subFields {
			rawValue, ok := fields[name]
			if !ok {
				problems[string(p)+"."+name] = "is required"
				continue
			}
			var v *string
			if err := json.Unmarshal(rawValue, &v); err != nil || v == nil {
				problems[string(p)+"."+name] = "must be a string"
				continue
			}
			values[name] = *v
		}
		content.SetPhase(p, entity.PhaseContent{
			ActivitesMaitre: values["activites_maitre"],
			ActivitesEleve:  values["activites_eleve"],
			Contenu:         values["contenu"],
		})
	}
	if len(problems) > 0 {
		return nil, problems
	}
	return &content, nil
}

func problemsError(problems map[string]string) error {
	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+problems[k])
	}
	return errors.New(strings.Join(parts, "; "))
}
