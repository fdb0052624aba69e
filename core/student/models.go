package student

import (
	"github.com/checkcheck/backend/core"
)

type Student struct {
	ID            int64  `json:"id" db:"id"`
	FingerprintID string `json:"fid" db:"fingerprint_id"`
	Number        string `json:"student_number" db:"student_number"`
	Name          string `json:"name" db:"name"`
}

func (s Student) Identifier() Identifier {
	return ParseNumber(s.Number)
}

// NewStudent contains information needed to register a Student.
type NewStudent struct {
	FingerprintID string `json:"fid" validate:"required,fid"`
	Number        string `json:"student_number" validate:"required,stdnum"`
	Name          string `json:"name" validate:"required,notblank"`
}

func (ns *NewStudent) Validate() error {
	ns.FingerprintID = core.CleanString(ns.FingerprintID)
	ns.Number = core.CleanString(ns.Number)
	ns.Name = core.CleanString(ns.Name)

	return core.Validate.Struct(ns)
}
