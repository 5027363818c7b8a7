package citescoop

import "fmt"

const errInputMax = 100

// A TemplateParseError reports a failure to parse citation templates
// out of wikitext, such as an identifier that should have been numeric
// and wasn't.
type TemplateParseError struct {
	Message string
	// Input is the offending text, when known.  It is truncated to
	// 100 characters when reported.
	Input string
}

func (e *TemplateParseError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("citation parse failure: %s", e.Message)
	}
	return fmt.Sprintf("citation parse failure: %s (input: %q)",
		e.Message, truncateInput(e.Input))
}

// truncateInput keeps error messages bounded on pathological input.
func truncateInput(in string) string {
	if len(in) <= errInputMax {
		return in
	}
	return in[:errInputMax-3] + "..."
}

// A DumpParseError reports a failure to read the dump itself: XML
// reader warnings, errors and fatal errors, bad numeric fields, and
// decompression failures all end up here.
type DumpParseError struct {
	Message string
	Err     error
}

func (e *DumpParseError) Error() string {
	return fmt.Sprintf("dump parse failure: %s", e.Message)
}

func (e *DumpParseError) Unwrap() error {
	return e.Err
}

func dumpError(err error) *DumpParseError {
	return &DumpParseError{Message: err.Error(), Err: err}
}
