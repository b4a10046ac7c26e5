package log

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type FieldType int

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeHex8
	FieldTypeHex16
	FieldTypeHex32
	FieldTypeHex64
	FieldTypeInt
	FieldTypeUint
	FieldTypeError
	FieldTypeDuration
	FieldTypeStringer
)

// ZField is a typed log field. Only the member matching Type is populated.
type ZField struct {
	Type FieldType
	Key  string

	String    string
	Integer   uint64
	Duration  time.Duration
	Error     error
	Interface any
	Boolean   bool
}

// hexpad formats v in lowercase hexadecimal, left-padded with zeroes to
// ndigits.
func hexpad(v uint64, ndigits int) string {
	s := strconv.FormatUint(v, 16)
	if len(s) >= ndigits {
		return s
	}
	return strings.Repeat("0", ndigits-len(s)) + s
}

func (f *ZField) Value() string {
	switch f.Type {
	case FieldTypeBool:
		return strconv.FormatBool(f.Boolean)
	case FieldTypeString:
		return f.String
	case FieldTypeUint:
		return strconv.FormatUint(f.Integer, 10)
	case FieldTypeInt:
		return strconv.FormatInt(int64(f.Integer), 10)
	case FieldTypeHex8:
		return hexpad(f.Integer, 2)
	case FieldTypeHex16:
		return hexpad(f.Integer, 4)
	case FieldTypeHex32:
		return hexpad(f.Integer, 8)
	case FieldTypeHex64:
		return hexpad(f.Integer, 16)
	case FieldTypeError:
		if f.Error == nil {
			return "<nil>"
		}
		return f.Error.Error()
	case FieldTypeDuration:
		return f.Duration.String()
	case FieldTypeStringer:
		return f.Interface.(fmt.Stringer).String()
	}
	return ""
}
