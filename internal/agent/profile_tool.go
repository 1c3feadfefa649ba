package agent

import (
	"strings"

	"github.com/jwhyun/finbot/internal/profile"
)

// profileSummary renders collected profile fields as a readable list in
// question order. Bookkeeping state never appears here.
func profileSummary(fields map[string]string) string {
	if len(fields) == 0 {
		return "아직 수집된 사용자 정보가 없습니다."
	}

	lines := []string{"현재까지 수집된 사용자 정보는 다음과 같습니다:"}
	for _, f := range profile.RequiredFields {
		v, ok := fields[f.Key]
		if !ok || v == "" {
			continue
		}
		lines = append(lines, "- "+profile.LabelFor(f.Key)+": "+v)
	}
	if len(lines) == 1 {
		return "아직 수집된 사용자 정보가 없습니다."
	}
	return strings.Join(lines, "\n")
}
