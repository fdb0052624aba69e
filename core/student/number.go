package student

import (
	"sort"
	"strconv"

	"github.com/checkcheck/backend/core"
)

// Unknown marks every part of an Identifier decoded from a malformed number.
const Unknown = "-"

// Identifier is a student number decomposed positionally:
// "3102" -> grade 3, class 1, sequence 2; "320" -> grade 3, class 2, sequence 0.
type Identifier struct {
	Grade    string `json:"grade"`
	Class    string `json:"class"`
	Sequence string `json:"sequence"`
}

var unknownIdentifier = Identifier{Grade: Unknown, Class: Unknown, Sequence: Unknown}

// ParseNumber decomposes a 3 or 4 digit student number.
// The sequence loses its leading zeros ("3102" -> "2").
func ParseNumber(number string) Identifier {
	if (len(number) != 3 && len(number) != 4) || !core.IsDigits(number) {
		return unknownIdentifier
	}
	seq, _ := strconv.Atoi(number[2:])
	return Identifier{
		Grade:    number[:1],
		Class:    number[1:2],
		Sequence: strconv.Itoa(seq),
	}
}

func (id Identifier) Known() bool {
	return id.Grade != Unknown
}

func (id Identifier) ints() (grade, class, seq int) {
	grade, _ = strconv.Atoi(id.Grade)
	class, _ = strconv.Atoi(id.Class)
	seq, _ = strconv.Atoi(id.Sequence)
	return
}

// Less orders by grade, class then sequence; unknown identifiers go last.
func (id Identifier) Less(other Identifier) bool {
	if id.Known() != other.Known() {
		return id.Known()
	}
	g1, c1, s1 := id.ints()
	g2, c2, s2 := other.ints()
	if g1 != g2 {
		return g1 < g2
	}
	if c1 != c2 {
		return c1 < c2
	}
	return s1 < s2
}

// SortStudents sorts in place by (grade, class, sequence); ties keep the student number order.
func SortStudents(students []Student) {
	sort.SliceStable(students, func(i, j int) bool {
		idI, idJ := students[i].Identifier(), students[j].Identifier()
		if idI.Less(idJ) {
			return true
		}
		if idJ.Less(idI) {
			return false
		}
		return students[i].Number < students[j].Number
	})
}

// CountByGrade groups students by grade.
func CountByGrade(students []Student) map[string]int {
	counts := make(map[string]int)
	for _, st := range students {
		counts[st.Identifier().Grade]++
	}
	return counts
}

// CountByClass groups students by class, restricted to grade when it is not empty.
func CountByClass(students []Student, grade string) map[string]int {
	counts := make(map[string]int)
	for _, st := range students {
		id := st.Identifier()
		if grade != "" && id.Grade != grade {
			continue
		}
		counts[id.Class]++
	}
	return counts
}
