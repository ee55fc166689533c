package dto

import "net/url"

// Form holds submitted values and per-field messages so a rejected form can
// be rendered again with what the user typed.
type Form struct {
	Values map[string]string
	Errors map[string]string
}

func NewForm() *Form {
	return &Form{Values: map[string]string{}, Errors: map[string]string{}}
}

// FormFrom copies the named fields out of submitted values. Fields not
// listed are dropped.
func FormFrom(values url.Values, fields ...string) *Form {
	f := NewForm()
	for _, name := range fields {
		f.Values[name] = values.Get(name)
	}
	return f
}

func (f *Form) Value(name string) string {
	if f == nil {
		return ""
	}
	return f.Values[name]
}

func (f *Form) Error(name string) string {
	if f == nil {
		return ""
	}
	return f.Errors[name]
}

func (f *Form) HasErrors() bool {
	return f != nil && len(f.Errors) > 0
}

// Redact blanks fields that must never be echoed back, such as passwords.
func (f *Form) Redact(fields ...string) *Form {
	for _, name := range fields {
		delete(f.Values, name)
	}
	return f
}
