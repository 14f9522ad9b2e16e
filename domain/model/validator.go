// Package model provides domain model for tabimport
package model

import (
	"fmt"
	"strings"
)

// ValidationPolicy decides what a failing custom rule means.
type ValidationPolicy int

const (
	// ValidationLenient treats an internal rule failure as a pass
	ValidationLenient ValidationPolicy = iota
	// ValidationStrict treats an internal rule failure as an invalid column
	ValidationStrict
)

// String returns the flag spelling of the policy.
func (p ValidationPolicy) String() string {
	if p == ValidationStrict {
		return "strict"
	}
	return "lenient"
}

// ParseValidationPolicy parses the flag spelling of a policy.
func ParseValidationPolicy(s string) (ValidationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return ValidationLenient, nil
	case "strict":
		return ValidationStrict, nil
	default:
		return ValidationLenient, fmt.Errorf("unknown validation policy %q", s)
	}
}

// Rule is a custom column check. It returns false to reject the value and
// an error when it cannot decide.
type Rule func(v Value) (bool, error)

// ValidationResult is the outcome of checking one record.
type ValidationResult struct {
	Accepted bool
	// Offending lists rejected columns in schema order.
	Offending []string
	// RuleErrors holds internal rule failures, whatever the policy.
	RuleErrors []error
}

// Err returns a *RowRejectedError for a rejected result, nil otherwise.
func (r ValidationResult) Err() error {
	if r.Accepted {
		return nil
	}
	return &RowRejectedError{Offending: r.Offending}
}

// RowValidator checks candidate records against their schema's declared
// types. Each record is checked as a whole and independently of others.
type RowValidator struct {
	policy ValidationPolicy
	rules  map[string][]Rule
}

// NewRowValidator creates a validator with the given policy.
func NewRowValidator(policy ValidationPolicy) *RowValidator {
	return &RowValidator{
		policy: policy,
		rules:  make(map[string][]Rule),
	}
}

// WithRule adds a custom rule for every column named column, in any schema.
func (v *RowValidator) WithRule(column string, rule Rule) *RowValidator {
	v.rules[column] = append(v.rules[column], rule)
	return v
}

// Policy returns the validator's policy.
func (v *RowValidator) Policy() ValidationPolicy {
	return v.policy
}

// Validate checks every field of rec. Any failing column rejects the whole
// record.
func (v *RowValidator) Validate(rec CandidateRecord, schema *SchemaDescriptor) ValidationResult {
	result := ValidationResult{Accepted: true}
	for _, f := range rec.Fields() {
		col, ok := schema.Column(f.Name)
		if !ok {
			continue
		}
		valid := CheckType(f.Value, col.DeclaredType)
		if valid {
			var ruleErr error
			valid, ruleErr = v.applyRules(f)
			if ruleErr != nil {
				result.RuleErrors = append(result.RuleErrors, ruleErr)
			}
		}
		if !valid {
			result.Accepted = false
			result.Offending = append(result.Offending, f.Name)
		}
	}
	return result
}

// applyRules runs the custom rules of a field.
func (v *RowValidator) applyRules(f Field) (bool, error) {
	for i, rule := range v.rules[f.Name] {
		ok, err := runRule(rule, f.Value)
		if err != nil {
			err = fmt.Errorf("rule %d for column %q: %w", i+1, f.Name, err)
			if v.policy == ValidationStrict {
				return false, err
			}
			// lenient: an undecidable rule does not block the row
			continue
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// runRule calls rule, converting a panic into an error.
func runRule(rule Rule, val Value) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return rule(val)
}

// CheckType reports whether val satisfies tag. Null values satisfy every
// tag.
//
//   - TypeInteger: a whole number
//   - TypeFloat: a number with a fractional part (4 is not a float)
//   - TypeDouble: any number
//   - TypeBoolean: a boolean value; the text "true" is not coerced
//   - TypeDate: a parsed date/time; date-formatted text is not coerced
//   - TypeString, TypeUnknown: anything
func CheckType(val Value, tag TypeTag) bool {
	if val.IsNull() || !tag.checked() {
		return true
	}
	switch tag {
	case TypeInteger:
		return val.IsWhole()
	case TypeFloat:
		return val.HasFraction()
	case TypeDouble:
		_, ok := val.Number()
		return ok
	case TypeBoolean:
		return val.Kind() == KindBool
	case TypeDate:
		return val.Kind() == KindDate
	default:
		return true
	}
}
