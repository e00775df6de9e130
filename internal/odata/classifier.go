package odata

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Heuristic name vocabularies. Matching is case-insensitive substring
// matching, so short indicators produce false positives ("no" matches
// inside "Notes"). That behavior is load-bearing for downstream
// consumers and must not be tightened.
var (
	primaryKeyIndicators = []string{"no", "code", "id", "docno", "number", "key"}
	dateIndicators       = []string{"date", "time", "created", "modified", "start", "end"}
	amountIndicators     = []string{"amount", "total", "cost", "price", "value", "sum", "balance"}
	userIndicators       = []string{"user", "createdby", "requestor", "staff", "employee", "account", "personnel"}
	booleanIndicators    = []string{
		"posted", "closed", "approved", "rejected", "completed",
		"active", "enabled", "locked", "paid", "processed",
		"is_", "has_", "allow_", "enable_", "disable_",
	}
)

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`),
	}
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

func containsAny(name string, indicators []string) bool {
	lower := strings.ToLower(name)
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func isPrimaryKey(name string) bool {
	return containsAny(name, primaryKeyIndicators)
}

func isDateField(name string, value any) bool {
	if s, ok := value.(string); ok {
		for _, p := range datePatterns {
			if p.MatchString(s) {
				return true
			}
		}
	}
	return containsAny(name, dateIndicators)
}

func isAmountField(name string) bool {
	return containsAny(name, amountIndicators)
}

func isStatusField(name string) bool {
	return strings.Contains(strings.ToLower(name), "status")
}

func isUserRelated(name string) bool {
	return containsAny(name, userIndicators)
}

// isBooleanField reports the boolean role flag: the name suggests a
// flag, or the value itself looks boolean (literal, 0/1, yes/no).
func isBooleanField(name string, value any) bool {
	if containsAny(name, booleanIndicators) {
		return true
	}
	switch v := value.(type) {
	case bool:
		return true
	case json.Number:
		f, err := v.Float64()
		return err == nil && (f == 0 || f == 1)
	case string:
		switch strings.ToLower(v) {
		case "true", "false", "yes", "no":
			return true
		}
	}
	return false
}

// isBooleanType is the stricter check used for type inference. A bare
// numeric 0/1 is not enough on its own: the name must also suggest a
// flag, otherwise counters like Quantity=1 would come out as bool.
func isBooleanType(name string, value any) bool {
	if containsAny(name, booleanIndicators) {
		return true
	}
	switch v := value.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(v) {
		case "true", "false", "yes", "no":
			return true
		}
	}
	return false
}

// inferType maps a (name, value) pair to the emitted C# type name.
// Ordering matters: boolean beats date beats the value-shape checks.
func inferType(name string, value any) string {
	if isBooleanType(name, value) {
		return "bool"
	}
	if isDateField(name, value) {
		return "DateTime"
	}
	if value == nil {
		return "object"
	}

	lower := strings.ToLower(name)
	switch v := value.(type) {
	case string:
		if timePattern.MatchString(v) {
			return "TimeSpan"
		}
		for _, p := range datePatterns {
			if p.MatchString(v) {
				return "DateTime"
			}
		}
		if strings.Contains(lower, "date") {
			return "DateTime"
		}
		if strings.Contains(lower, "time") {
			return "TimeSpan"
		}
		return "string"
	case json.Number:
		if isAmountField(name) {
			return "decimal"
		}
		if f, err := v.Float64(); err == nil && (f == 0 || f == 1) && containsAny(name, booleanIndicators) {
			return "bool"
		}
		if _, err := v.Int64(); err == nil && !strings.ContainsAny(v.String(), ".eE") {
			return "int"
		}
		return "decimal"
	case bool:
		return "bool"
	}
	return "object"
}

// descriptionRule pairs a predicate with its label so the precedence
// order stays explicit and testable as data.
type descriptionRule struct {
	match func(name string, value any) bool
	label func(name string, value any) string
}

var descriptionRules = []descriptionRule{
	{
		match: func(name string, _ any) bool { return isPrimaryKey(name) },
		label: func(string, any) string { return "Primary key identifier" },
	},
	{
		match: isDateField,
		label: func(_ string, value any) string {
			if s, ok := value.(string); ok && timePattern.MatchString(s) {
				return "Time field"
			}
			return "Date field"
		},
	},
	{
		match: func(name string, _ any) bool { return isAmountField(name) },
		label: func(string, any) string { return "Monetary amount" },
	},
	{
		match: func(name string, _ any) bool { return isStatusField(name) },
		label: func(string, any) string { return "Document status" },
	},
	{
		match: isBooleanField,
		label: func(string, any) string { return "Boolean indicator" },
	},
	{
		match: func(name string, _ any) bool { return isUserRelated(name) },
		label: func(string, any) string { return "User reference" },
	},
}

func describe(name string, value any) string {
	for _, rule := range descriptionRules {
		if rule.match(name, value) {
			return rule.label(name, value)
		}
	}
	return ""
}
