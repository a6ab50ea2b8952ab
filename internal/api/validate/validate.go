package validate

import (
	"strconv"
	"strings"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Helpers
func Required(field, value string) *ErrField {
	if strings.TrimSpace(value) == "" {
		return &ErrField{Field: field, Msg: "required"}
	}
	return nil
}

func MinInt(field string, v, min int64) *ErrField {
	if v < min {
		return &ErrField{Field: field, Msg: "must be >= " + strconv.FormatInt(min, 10)}
	}
	return nil
}

func Latitude(field string, v float64) *ErrField {
	if v < -90 || v > 90 {
		return &ErrField{Field: field, Msg: "must be between -90 and 90"}
	}
	return nil
}

func Longitude(field string, v float64) *ErrField {
	if v < -180 || v > 180 {
		return &ErrField{Field: field, Msg: "must be between -180 and 180"}
	}
	return nil
}

// Collect drops nils and returns an Errs error, or nil when clean.
func Collect(fields ...*ErrField) error {
	var errs Errs
	for _, f := range fields {
		if f != nil {
			errs = append(errs, *f)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
