package vocab

// defaultSubjects is the official subject list, including the spacing and
// numeral variants that appear across curriculum revisions.
var defaultSubjects = []string{
	"국어", "국어Ⅰ", "국어Ⅱ", "국어 I", "국어 II",
	"수학", "수학Ⅰ", "수학Ⅱ", "수학 I", "수학 II",
	"영어", "영어Ⅰ", "영어Ⅱ", "영어 I", "영어 II",
	"화법과 작문", "화법과작문", "독서와 문법", "독서와문법",
	"문학", "독서", "언어와 매체",
	"미적분Ⅰ", "미적분Ⅱ", "미적분 I", "미적분 II", "미적분",
	"확률과 통계", "확률과통계", "기하와 벡터", "기하와벡터", "기하",
	"실용영어Ⅰ", "실용영어Ⅱ", "실용영어 I", "실용영어 II", "실용영어",
	"영어회화", "영어독해와 작문", "영어독해와작문",
	"한국사", "한국지리", "세계지리", "세계사", "동아시아사",
	"경제", "정치와 법", "법과정치", "사회·문화", "사회문화", "사회",
	"생활과 윤리", "윤리와 사상", "윤리와사상",
	"물리학Ⅰ", "물리학Ⅱ", "물리 I", "물리 II", "물리학 I", "물리학 II",
	"화학Ⅰ", "화학Ⅱ", "화학 I", "화학 II", "화학",
	"생명과학Ⅰ", "생명과학Ⅱ", "생명과학 I", "생명과학 II", "생명과학",
	"지구과학Ⅰ", "지구과학Ⅱ", "지구과학 I", "지구과학 II", "지구과학",
	"과학", "융합과학", "과학탐구실험",
	"체육", "운동과 건강", "스포츠 생활", "스포츠문화", "스포츠과학",
	"음악", "음악과생활", "음악과진로", "음악 감상과 비평",
	"미술", "미술창작", "미술 감상과 비평",
	"기술·가정", "기술 . 가정", "기술가정", "정보",
	"한문Ⅰ", "한문Ⅱ", "한문 I", "한문 II", "한문",
	"중국어Ⅰ", "중국어Ⅱ", "중국어 I", "중국어 II",
	"일본어Ⅰ", "일본어Ⅱ", "일본어 I", "일본어 II",
	"독일어Ⅰ", "프랑스어Ⅰ", "스페인어Ⅰ",
	"실용경제", "논술", "진로와 직업", "철학", "심리학", "교육학",
	"고전", "고전읽기",
}

// Subject groups.
const (
	GroupKorean         = "국어"
	GroupMath           = "수학"
	GroupEnglish        = "영어"
	GroupSocial         = "사회"
	GroupScience        = "과학"
	GroupPhysical       = "체육"
	GroupArts           = "예술"
	GroupTechHome       = "기술가정"
	GroupSecondLanguage = "제2외국어"
	GroupGeneral        = "교양"
)

// groupRule assigns a group to any subject containing one of its markers.
type groupRule struct {
	group   string
	markers []string
}

// groupRules are evaluated in order; the first rule with a matching marker wins.
var groupRules = []groupRule{
	{GroupKorean, []string{"국어", "화법", "작문", "독서", "언어", "문학", "고전"}},
	{GroupMath, []string{"수학", "미적분", "확률", "통계", "기하"}},
	{GroupEnglish, []string{"영어", "English"}},
	{GroupSocial, []string{"역사", "한국사", "세계사", "동아시아", "지리", "경제", "정치", "법", "사회", "윤리"}},
	{GroupScience, []string{"과학", "물리", "화학", "생명", "지구", "융합"}},
	{GroupPhysical, []string{"체육", "운동", "스포츠"}},
	{GroupArts, []string{"음악", "미술", "연극", "예술"}},
	{GroupTechHome, []string{"기술", "가정", "정보"}},
	{GroupSecondLanguage, []string{"독일어", "프랑스어", "스페인어", "중국어", "일본어", "한문"}},
}

// Groups lists every subject group in display order.
func Groups() []string {
	groups := make([]string, 0, len(groupRules)+1)
	for _, rule := range groupRules {
		groups = append(groups, rule.group)
	}
	return append(groups, GroupGeneral)
}
