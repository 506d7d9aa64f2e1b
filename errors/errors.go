// The errors package provides the error primitives shared by the pmxfile
// packages. It forwards to the standard errors package, and adds Errors, a
// list used to accumulate non-fatal warnings.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

func New(text string) error {
	return errors.New(text)
}

func Errorf(format string, v ...interface{}) error {
	return fmt.Errorf(format, v...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Errors is a list of errors.
type Errors []error

// Error formats the list with one message per line. Lines within a message
// are indented to keep them grouped under their message.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d errors:", len(errs))
	for _, err := range errs {
		buf.WriteString("\n\t")
		buf.WriteString(strings.ReplaceAll(err.Error(), "\n", "\n\t"))
	}
	return buf.String()
}

// Is reports whether any error in the list matches target.
func (errs Errors) Is(target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Append returns errs with each non-nil err appended to it.
func (errs Errors) Append(err ...error) Errors {
	for _, err := range err {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Return returns nil if errs is empty, and errs otherwise.
func (errs Errors) Return() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Union combines errs into one Errors, flattening any that are Errors. Returns
// nil if every err is nil or empty.
func Union(errs ...error) error {
	var e Errors
	for _, err := range errs {
		if list, ok := err.(Errors); ok {
			e = e.Append(list...)
			continue
		}
		e = e.Append(err)
	}
	return e.Return()
}
