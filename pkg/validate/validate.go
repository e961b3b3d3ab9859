// Package validate provides struct-tag validation for request input.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	boolean             "true","false","1","0" (or actual bool)
//	alpha_dash          letters, digits, hyphens, underscores
//	numeric             any number
//	integer             whole number
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gt=N                number > N
//	gte=N               number >= N
//	lte=N               number <= N
//	in=a,b,c            value must be one of the listed items
//
// Error messages are in Spanish, matching the rest of the API surface.
//
// Example:
//
//	type checkoutInput struct {
//	    UserID        uint   `json:"usuario_id"   validate:"required,integer,gt=0"`
//	    PaymentMethod string `json:"metodo_pago"  validate:"required,in=card,bank_transfer,cash,yape,plin"`
//	    ShippingNotes string `json:"notas"        validate:"nullable,max=500"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
// Field names come from the json tag so clients can match errors to the
// payload keys they sent.
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
		field := rt.Field(i)
		value := rv.Field(i)

		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		rules := splitTag(tag)

		// nullable means an empty value passes without further checks.
		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := check(rule, name, value); msg != "" {
				errs[name] = msg
				break // first failing rule per field
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// ─── Rule checks ──────────────────────────────────────────────────────────────

// checker validates one rule against a field value; empty string means pass.
type checker func(field, param string, v reflect.Value, raw string) string

var checkers = map[string]checker{
	"required": func(field, _ string, v reflect.Value, _ string) string {
		if isEmpty(v) {
			return fmt.Sprintf("El campo %s es obligatorio.", field)
		}
		return ""
	},
	"email": func(field, _ string, _ reflect.Value, raw string) string {
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("El campo %s debe ser un correo electrónico válido.", field)
		}
		return ""
	},
	"boolean": func(field, _ string, v reflect.Value, raw string) string {
		lower := strings.ToLower(raw)
		if v.Kind() != reflect.Bool && lower != "true" && lower != "false" && lower != "1" && lower != "0" {
			return fmt.Sprintf("El campo %s debe ser verdadero o falso.", field)
		}
		return ""
	},
	"alpha_dash": func(field, _ string, _ reflect.Value, raw string) string {
		for _, c := range raw {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
				return fmt.Sprintf("El campo %s solo puede contener letras, números, guiones y guiones bajos.", field)
			}
		}
		return ""
	},
	"numeric": func(field, _ string, _ reflect.Value, raw string) string {
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("El campo %s debe ser un número.", field)
		}
		return ""
	},
	"integer": func(field, _ string, _ reflect.Value, raw string) string {
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Sprintf("El campo %s debe ser un número entero.", field)
		}
		return ""
	},
	"min": func(field, param string, v reflect.Value, raw string) string {
		n := parseParam(param)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("El campo %s debe ser como mínimo %s.", field, param)
			}
		} else if float64(len([]rune(raw))) < n {
			return fmt.Sprintf("El campo %s debe tener al menos %s caracteres.", field, param)
		}
		return ""
	},
	"max": func(field, param string, v reflect.Value, raw string) string {
		n := parseParam(param)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("El campo %s no debe ser mayor que %s.", field, param)
			}
		} else if float64(len([]rune(raw))) > n {
			return fmt.Sprintf("El campo %s no debe superar los %s caracteres.", field, param)
		}
		return ""
	},
	"gt": func(field, param string, v reflect.Value, _ string) string {
		if toFloat(v) <= parseParam(param) {
			return fmt.Sprintf("El campo %s debe ser mayor que %s.", field, param)
		}
		return ""
	},
	"gte": func(field, param string, v reflect.Value, _ string) string {
		if toFloat(v) < parseParam(param) {
			return fmt.Sprintf("El campo %s debe ser mayor o igual que %s.", field, param)
		}
		return ""
	},
	"lte": func(field, param string, v reflect.Value, _ string) string {
		if toFloat(v) > parseParam(param) {
			return fmt.Sprintf("El campo %s debe ser menor o igual que %s.", field, param)
		}
		return ""
	},
	"in": func(field, param string, _ reflect.Value, raw string) string {
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("El valor de %s no es válido.", field)
	},
}

func check(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")
	c, ok := checkers[key]
	if !ok {
		return ""
	}
	return c(field, param, v, fmt.Sprintf("%v", v.Interface()))
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false // false is a valid boolean value, not empty
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
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
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func parseParam(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitTag splits the validate tag by comma while keeping the multi-value
// parameter of in= intact.
// e.g. "required,in=card,cash,max=100" → ["required","in=card,cash","max=100"]
func splitTag(tag string) []string {
	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch == ',' {
			if inParam {
				rest := tag[i+1:]
				if startsKnownRule(rest) {
					rules = append(rules, current.String())
					current.Reset()
					inParam = false
				} else {
					current.WriteByte(ch)
				}
			} else {
				rules = append(rules, current.String())
				current.Reset()
			}
		} else {
			current.WriteByte(ch)
			if !inParam && strings.HasSuffix(current.String(), "in=") {
				inParam = true
			}
		}
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

// startsKnownRule reports whether s begins with a rule keyword, meaning the
// comma ended an in= parameter list rather than continuing it.
func startsKnownRule(s string) bool {
	known := []string{
		"required", "nullable", "email", "boolean", "alpha_dash",
		"numeric", "integer", "min=", "max=", "gt=", "gte=", "lte=", "in=",
	}
	for _, k := range known {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
