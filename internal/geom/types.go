package geom

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMissingType       = errors.New("missing type column")
	ErrUnknownType       = errors.New("unknown feature type")
	ErrInvalidOutlier    = errors.New("invalid outlier flag")
	ErrInvalidGeometry   = errors.New("invalid geometry")
)

// Column names shared by every supported input format.
const (
	ColType    = "type"
	ColOutlier = "outlier"
	ColRecord  = "record"
)

// FeatureType classifies a row as either the range polygon or an observation.
type FeatureType int

const (
	TypeUnknown FeatureType = iota
	TypeGeographicRange
	TypeOccurrence
)

func (t FeatureType) String() string {
	switch t {
	case TypeGeographicRange:
		return "geographic_range"
	case TypeOccurrence:
		return "occurrence"
	}
	return "unknown"
}

// ParseFeatureType maps the raw column value onto a FeatureType.
func ParseFeatureType(s string) (FeatureType, error) {
	switch s {
	case "geographic_range":
		return TypeGeographicRange, nil
	case "occurrence":
		return TypeOccurrence, nil
	case "":
		return TypeUnknown, ErrMissingType
	}
	return TypeUnknown, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// OutlierFlag is the outlier column decoded from its "true"/"false" string form.
// OutlierUnset marks rows with no usable flag.
type OutlierFlag int

const (
	OutlierUnset OutlierFlag = iota
	OutlierFalse
	OutlierTrue
)

func (o OutlierFlag) String() string {
	switch o {
	case OutlierFalse:
		return "false"
	case OutlierTrue:
		return "true"
	}
	return ""
}

// ParseOutlierFlag accepts exactly "true" or "false".
func ParseOutlierFlag(s string) (OutlierFlag, error) {
	switch s {
	case "false":
		return OutlierFalse, nil
	case "true":
		return OutlierTrue, nil
	}
	return OutlierUnset, fmt.Errorf("%w: %q", ErrInvalidOutlier, s)
}

// Record is one row of a loaded dataset.
type Record struct {
	Type       FeatureType
	Outlier    OutlierFlag
	Label      string
	Geometry   orb.Geometry
	Properties map[string]any
}

// IsOccurrence reports whether r is a non-outlier occurrence.
func IsOccurrence(r Record) bool {
	return r.Type == TypeOccurrence && r.Outlier == OutlierFalse
}

// IsOutlier reports whether r is an occurrence flagged as an outlier.
func IsOutlier(r Record) bool {
	return r.Type == TypeOccurrence && r.Outlier == OutlierTrue
}

// IsRange reports whether r is a geographic range row.
func IsRange(r Record) bool {
	return r.Type == TypeGeographicRange
}
