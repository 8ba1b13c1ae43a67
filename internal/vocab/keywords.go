package vocab

// Keyword family names.
const (
	FamilyExploration = "exploration"
	FamilyOnline      = "online"
	FamilyQualitative = "qualitative"
)

// Keywords holds the three keyword families scored in narrative records.
type Keywords struct {
	Exploration []string `yaml:"exploration"`
	Online      []string `yaml:"online"`
	Qualitative []string `yaml:"qualitative"`
}

var defaultKeywords = Keywords{
	Exploration: []string{
		"실험", "실습", "관찰", "측정", "분석", "탐구", "연구", "조사",
		"탐색", "발견", "현장", "답사", "견학", "방문", "체험",
		"프로젝트", "과제연구", "팀프로젝트", "모둠활동",
		"가설", "검증", "실험설계", "데이터", "결과분석", "보고서",
	},
	Online: []string{
		"온라인", "원격", "비대면", "화상", "실시간", "쌍방향",
		"zoom", "줌", "구글클래스룸", "e-학습터", "이학습터",
		"EBS", "ebs", "위두랑", "디지털", "인터넷", "원격수업",
		"온라인수업", "화상수업", "동영상", "영상",
	},
	Qualitative: []string{
		"과정", "노력", "태도", "참여", "열정", "몰입", "집중",
		"협력", "협동", "배려", "나눔", "소통", "공감", "존중",
		"성장", "발전", "개선", "극복", "도전", "변화",
	},
}

func (k Keywords) clone() Keywords {
	return Keywords{
		Exploration: append([]string(nil), k.Exploration...),
		Online:      append([]string(nil), k.Online...),
		Qualitative: append([]string(nil), k.Qualitative...),
	}
}

// merge appends the entries of extra that are not already present.
func (k Keywords) merge(extra Keywords) Keywords {
	return Keywords{
		Exploration: appendUnique(k.Exploration, extra.Exploration),
		Online:      appendUnique(k.Online, extra.Online),
		Qualitative: appendUnique(k.Qualitative, extra.Qualitative),
	}
}

func appendUnique(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range extra {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
