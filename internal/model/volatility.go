package model

// Stats summarizes a set of severity values.
type Stats struct {
	StdDev float64
	Mean   float64
	Count  int
}

// Volatility is the per-student dispersion summary.
type Volatility struct {
	StudentID string
	Overall   Stats
	ByGrade   [GradeLevels]Stats
}
