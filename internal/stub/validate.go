package stub

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/labadmin/internal/model"
)

var validate = validator.New()

// fieldRules declares per-resource validation in validator tag syntax.
// The real back office validates server-side and answers 422 with
// per-field messages; the stub reproduces that contract.
var fieldRules = map[string]map[string]string{
	"members": {
		"name":   "required",
		"email":  "required,email",
		"status": "required",
	},
	"publications": {
		"title": "required",
		"year":  "omitempty,min=1900,max=2100",
	},
	"partners": {
		"name":    "required",
		"website": "omitempty,url",
	},
	"axes": {
		"slug": "required",
	},
	"messages": {
		"email": "omitempty,email",
	},
}

// validateRecord checks rec against the resource's rules and returns
// per-field messages, or nil when everything passes.
func validateRecord(resource string, rec model.Record) map[string][]string {
	rules := fieldRules[resource]
	if len(rules) == 0 {
		return nil
	}

	fields := make(map[string][]string)
	for field, rule := range rules {
		if err := validate.Var(rec[field], rule); err != nil {
			fields[field] = append(fields[field], message(field, err))
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func message(field string, err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return fmt.Sprintf("%s is invalid", field)
	}
	switch errs[0].Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min", "max":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
