// Package validate checks the `validate` tags on request body structs.
//
// Only the rules the storefront's input types need are implemented
// (comma-separated in the tag):
//
//	required   field must not be zero/empty
//	email      well-formed email address
//	min=N      string: at least N characters | number: at least N
//	max=N      string: at most N characters  | number: at most N
//	in=a,b,c   value must be one of the listed items
//
// Example:
//
//	type body struct {
//	    Email    string `json:"email"    validate:"required,email"`
//	    Password string `json:"password" validate:"required,min=8"`
//	    Category string `json:"category" validate:"required,in=Bronze,Silver,Gold"`
//	}
//
// Struct only looks at the top-level fields of the value it is given.
// Nested structs (the shipping address inside an order body) are validated
// with their own Struct call at the boundary that receives them.
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Struct validates the exported top-level fields of v that carry a
// `validate` tag. The result maps the field's json name to the first
// failing rule's message; an empty map means the value passed.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("validate")
		if tag == "" {
			continue
		}
		name := fieldName(rt.Field(i))
		if msg := check(splitRules(tag), name, rv.Field(i)); msg != "" {
			errs[name] = msg
		}
	}
	return errs
}

// HasErrors reports whether Struct found any failures.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// check runs the field's rules in order and returns the first failure.
func check(rules []string, name string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())

	for _, rule := range rules {
		key, param, _ := strings.Cut(rule, "=")
		switch key {
		case "required":
			if isEmpty(v) {
				return fmt.Sprintf("The %s field is required.", name)
			}
		case "email":
			if !emailRE.MatchString(raw) {
				return fmt.Sprintf("The %s must be a valid email address.", name)
			}
		case "min":
			n := parseNum(param)
			if isNumeric(v) {
				if toFloat(v) < n {
					return fmt.Sprintf("The %s must be at least %s.", name, param)
				}
			} else if float64(len([]rune(raw))) < n {
				return fmt.Sprintf("The %s must be at least %s characters.", name, param)
			}
		case "max":
			n := parseNum(param)
			if isNumeric(v) {
				if toFloat(v) > n {
					return fmt.Sprintf("The %s must not be greater than %s.", name, param)
				}
			} else if float64(len([]rune(raw))) > n {
				return fmt.Sprintf("The %s must not exceed %s characters.", name, param)
			}
		case "in":
			if !oneOf(raw, param) {
				return fmt.Sprintf("The selected %s is invalid.", name)
			}
		}
	}
	return ""
}

func oneOf(raw, list string) bool {
	for _, item := range strings.Split(list, ",") {
		if raw == strings.TrimSpace(item) {
			return true
		}
	}
	return false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func parseNum(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

// fieldName prefers the json tag so error keys match the wire format.
func fieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits the tag on commas, folding the list values of an in=
// rule back together: "required,in=Bronze,Silver,Gold" is two rules.
func splitRules(tag string) []string {
	parts := strings.Split(tag, ",")
	rules := make([]string, 0, len(parts))
	for _, p := range parts {
		if len(rules) > 0 && strings.HasPrefix(rules[len(rules)-1], "in=") && !isRuleToken(p) {
			rules[len(rules)-1] += "," + p
			continue
		}
		rules = append(rules, p)
	}
	return rules
}

func isRuleToken(s string) bool {
	for _, k := range []string{"required", "email", "min=", "max=", "in="} {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}
