package cohort

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/saenggibu/internal/model"
)

// Hash lengths, in hex characters.
const (
	AnonymousIDLength = 16
	NameHashLength    = 8
)

// FieldDelimiter separates positional fields in a transcript filename.
const FieldDelimiter = "_"

var currentGradePattern = regexp.MustCompile(`(\d)학년`)

// Identity holds the positional filename fields:
// identifier_gradelevel_major_name_admission.
type Identity struct {
	StudentID     string
	GradeToken    string
	Major         string
	Name          string
	AdmissionType string
	CurrentGrade  int
}

// ParseFilename splits a transcript filename into its identity fields.
// Missing or empty fields become model.Unknown.
func ParseFilename(filename string) Identity {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, FieldDelimiter)

	field := func(i int) string {
		if i < len(parts) {
			if v := strings.TrimSpace(parts[i]); v != "" {
				return v
			}
		}
		return model.Unknown
	}

	id := Identity{
		StudentID:     field(0),
		GradeToken:    field(1),
		Major:         field(2),
		Name:          field(3),
		AdmissionType: field(4),
	}
	if m := currentGradePattern.FindStringSubmatch(base); m != nil {
		id.CurrentGrade, _ = strconv.Atoi(m[1])
	}
	return id
}

// AnonymousID is the stable one-way identifier derived from name and student id.
func AnonymousID(name, studentID string) string {
	return truncatedHash(name+"_"+studentID, AnonymousIDLength)
}

// NameHash is a shorter one-way hash of the name alone, kept for weak cross-referencing.
func NameHash(name string) string {
	return truncatedHash(name, NameHashLength)
}

func truncatedHash(s string, n int) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:n]
}
