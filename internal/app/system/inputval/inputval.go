// internal/app/system/inputval/inputval.go
//
// Package inputval validates form input structs declaratively. Rules are
// declared in a `validate` tag; the human-readable field name used in
// error messages comes from a `label` tag.
//
//	type Input struct {
//	    Name  string `validate:"required,max=80" label:"Name"`
//	    Email string `validate:"required,email" label:"Email address"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/arenahub/internal/domain/models"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures from one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first failure message, or "" when validation passed.
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every failure message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func (r *Result) add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

// Validate runs the tag-declared rules over the struct's string fields.
// Fields are checked in declaration order, rules in tag order, so First()
// is deterministic.
func Validate(input any) *Result {
	result := &Result{}

	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return result
	}
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		rules := field.Tag.Get("validate")
		if rules == "" || field.Type.Kind() != reflect.String {
			continue
		}
		label := field.Tag.Get("label")
		if label == "" {
			label = field.Name
		}
		value := v.Field(i).String()
		trimmed := strings.TrimSpace(value)

		for _, rule := range strings.Split(rules, ",") {
			rule = strings.TrimSpace(rule)
			switch {
			case rule == "required":
				if trimmed == "" {
					result.add(field.Name, label+" is required.")
				}
			case strings.HasPrefix(rule, "max="):
				n, err := strconv.Atoi(strings.TrimPrefix(rule, "max="))
				if err == nil && utf8.RuneCountInString(trimmed) > n {
					result.add(field.Name, fmt.Sprintf("%s must be at most %d characters.", label, n))
				}
			case rule == "email":
				if trimmed != "" && !IsValidEmail(trimmed) {
					result.add(field.Name, "A valid email address is required.")
				}
			case rule == "authmethod":
				if trimmed != "" && !IsValidAuthMethod(trimmed) {
					result.add(field.Name, label+" is not a supported sign-in method.")
				}
			case rule == "httpurl":
				if trimmed != "" && !IsValidHTTPURL(trimmed) {
					result.add(field.Name, label+" must be a valid http(s) URL.")
				}
			case rule == "objectid":
				if trimmed != "" && !IsValidObjectID(trimmed) {
					result.add(field.Name, label+" is not a valid identifier.")
				}
			case rule == "visibility":
				if trimmed != "" && !models.ValidVisibility(trimmed) {
					result.add(field.Name, label+" must be hidden, private, public, or open.")
				}
			}
		}
	}
	return result
}
