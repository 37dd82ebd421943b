// Package validator wraps go-playground struct validation so handlers depend
// on a small injectable surface instead of the library's package state.
package validator

import "github.com/go-playground/validator/v10"

// Validator validates structs and single values via struct tags.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator. Custom rules are added with RegisterValidation.
func New() *Validator {
	return &Validator{
		v: validator.New(),
	}
}

// Struct validates a struct based on its validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single value against a tag expression.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function under the tag.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}
