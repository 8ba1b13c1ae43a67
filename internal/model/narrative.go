package model

// KeywordCounts holds hit counts for the three keyword families.
type KeywordCounts struct {
	Exploration int
	Online      int
	Qualitative int
}

// Add returns the element-wise sum of two counts.
func (k KeywordCounts) Add(other KeywordCounts) KeywordCounts {
	return KeywordCounts{
		Exploration: k.Exploration + other.Exploration,
		Online:      k.Online + other.Online,
		Qualitative: k.Qualitative + other.Qualitative,
	}
}

// Narrative is one subject comment (세특) block.
type Narrative struct {
	Year          *int
	StudentID     string
	Subject       string
	SubjectRaw    string
	Counts        KeywordCounts
	GradeYear     int
	MatchScore    int
	ContentLength int
}

// PerThousand normalizes a count to hits per 1000 characters. Zero length yields zero.
func PerThousand(count, length int) float64 {
	if length <= 0 {
		return 0
	}
	return float64(count) / float64(length) * 1000
}

// ExplorationFreq is the exploration keyword frequency per 1000 characters.
func (n Narrative) ExplorationFreq() float64 {
	return PerThousand(n.Counts.Exploration, n.ContentLength)
}

// OnlineFreq is the remote-instruction keyword frequency per 1000 characters.
func (n Narrative) OnlineFreq() float64 {
	return PerThousand(n.Counts.Online, n.ContentLength)
}

// QualitativeFreq is the qualitative keyword frequency per 1000 characters.
func (n Narrative) QualitativeFreq() float64 {
	return PerThousand(n.Counts.Qualitative, n.ContentLength)
}

// KeywordTotal is the per-student aggregate of narrative keyword counts.
type KeywordTotal struct {
	AnonymousID string
	KeywordCounts
}
