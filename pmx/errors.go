package pmx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pmxutil/pmxfile/errors"
)

var (
	// Indicates that the file does not begin with the PMX signature.
	ErrMagicMismatch = errors.New("magic mismatch")
	// Indicates a format version outside of 2.0 and 2.1.
	ErrUnsupportedVersion = errors.New("unsupported version")
	// Indicates an encoding byte that is neither UTF-16LE nor UTF-8.
	ErrInvalidEncoding = errors.New("invalid text encoding")
	// Indicates an index width other than 1, 2, or 4.
	ErrInvalidIndexWidth = errors.New("invalid index width")
	// Indicates more than 4 additional UV channels.
	ErrInvalidAdditionalUV = errors.New("invalid additional UV count")
	// Indicates a tag byte outside the range of its enumeration.
	ErrUnrecognizedDiscriminant = errors.New("unrecognized discriminant")
	// Indicates that the source was exhausted in the middle of a value.
	ErrTruncatedInput = errors.New("truncated input")
	// Indicates that the sink rejected a write.
	ErrSinkFailure = errors.New("sink failure")
	// Indicates that a Writer was written without model info.
	ErrMissingModelInfo = errors.New("missing model info")
	// Indicates a value that does not fit its encoded width.
	ErrValueTooWide = errors.New("value too wide")
	// Indicates text that is not valid in the selected encoding.
	ErrInvalidText = errors.New("invalid text")
	// Indicates a negative length prefix.
	ErrNegativeLength = errors.New("negative length")
	// Indicates a Read on a stage that was already read.
	ErrStageConsumed = errors.New("stage already consumed")
	// Indicates a Write on a Writer that was already written.
	ErrWriterConsumed = errors.New("writer already consumed")
)

// UnsupportedVersionError indicates a version number that is not supported by
// the codec. It matches ErrUnsupportedVersion.
type UnsupportedVersionError float32

func (err UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported version %g", float32(err))
}

func (err UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// IndexWidthError indicates an invalid index width in the header. It matches
// ErrInvalidIndexWidth.
type IndexWidthError struct {
	// Field is the index domain of the width.
	Field string
	Width uint8
}

func (err IndexWidthError) Error() string {
	return fmt.Sprintf("invalid %s index width %d", err.Field, err.Width)
}

func (err IndexWidthError) Is(target error) bool {
	return target == ErrInvalidIndexWidth
}

// DiscriminantError indicates a tag value outside of the enumeration it
// selects from. It matches ErrUnrecognizedDiscriminant.
type DiscriminantError struct {
	Field string
	Value int64
}

func (err DiscriminantError) Error() string {
	return fmt.Sprintf("unrecognized %s %d", err.Field, err.Value)
}

func (err DiscriminantError) Is(target error) bool {
	return target == ErrUnrecognizedDiscriminant
}

// ValueTooWideError indicates a value that cannot be encoded with the width
// selected for it. It matches ErrValueTooWide.
type ValueTooWideError struct {
	Field string
	// Width is the number of bytes available for the value.
	Width int
	Value int64
}

func (err ValueTooWideError) Error() string {
	return fmt.Sprintf("%s %d does not fit in %d bytes", err.Field, err.Value, err.Width)
}

func (err ValueTooWideError) Is(target error) bool {
	return target == ErrValueTooWide
}

// SinkError wraps an error returned by the underlying writer. It matches
// ErrSinkFailure.
type SinkError struct {
	Cause error
}

func (err SinkError) Error() string {
	if err.Cause == nil {
		return "sink failure"
	}
	return "sink failure: " + err.Cause.Error()
}

func (err SinkError) Is(target error) bool {
	return target == ErrSinkFailure
}

func (err SinkError) Unwrap() error {
	return err.Cause
}

// DataError wraps an error that occurred while decoding byte data.
type DataError struct {
	// Offset is the byte offset where the error occurred.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// SectionError indicates an error that occurred within a section of the
// file.
type SectionError struct {
	// Section is the name of the section, such as "vertices".
	Section string

	Cause error
}

func (err SectionError) Error() string {
	if err.Cause == nil {
		return err.Section + " section"
	}
	return err.Section + " section: " + err.Cause.Error()
}

func (err SectionError) Unwrap() error {
	return err.Cause
}

// IsFormatError returns whether err indicates that the data is not a valid
// PMX file, as opposed to a failure of the underlying reader or writer.
func IsFormatError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range []error{
		ErrMagicMismatch,
		ErrUnsupportedVersion,
		ErrInvalidEncoding,
		ErrInvalidIndexWidth,
		ErrInvalidAdditionalUV,
		ErrUnrecognizedDiscriminant,
		ErrTruncatedInput,
		ErrInvalidText,
		ErrNegativeLength,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Warning is a non-fatal irregularity found while reading a file.
type Warning struct {
	// Offset is the byte offset after the irregular value.
	Offset int64
	Msg    string
}

func (w Warning) Error() string {
	return fmt.Sprintf("at %d: %s", w.Offset, w.Msg)
}
