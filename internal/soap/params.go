package soap

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yourorg/scaffold/pkg/types"
)

var xmlTypeMap = map[string]string{
	"string":   "string",
	"decimal":  "decimal",
	"int":      "int",
	"integer":  "int",
	"boolean":  "bool",
	"date":     "DateTime",
	"datetime": "DateTime",
	"double":   "double",
	"float":    "float",
	"long":     "long",
	"short":    "short",
	"byte":     "byte",
}

var (
	dropdownIndicators = []string{
		"account", "code", "type", "category", "status",
		"source", "item", "vote", "dimension", "gl", "vendor",
		"customer", "employee", "department", "county", "subcounty",
		"requestsource",
	}
	dateIndicators   = []string{"date", "time", "created", "modified", "start", "end"}
	amountIndicators = []string{"amount", "total", "cost", "price", "value", "sum", "balance"}

	// Names that identify a function as operating on a detail line of
	// a parent document. Exact match, unlike the substring heuristics.
	lineFunctionNames = []string{"docno", "documentno", "no", "code"}
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9]`)
	titleCaser = cases.Title(language.English)
)

// Build classifies raw schema elements into parameter descriptors.
// Entries with an empty name are dropped silently.
func Build(elements []Element) []types.Parameter {
	params := make([]types.Parameter, 0, len(elements))
	for _, el := range elements {
		if el.Name == "" {
			continue
		}
		csharpType := mapXMLType(el.Type)
		params = append(params, types.Parameter{
			Name:        el.Name,
			CSharpName:  normalizeName(el.Name),
			DisplayName: displayName(el.Name),
			Type:        csharpType,
			XMLType:     el.Type,
			IsRequired:  el.MinOccurs == "1",
			IsArray:     el.MaxOccurs != "1",
			IsDropdown:  isDropdownField(el.Name),
			IsDate:      isDateField(el.Name, el.Type),
			IsAmount:    isAmountField(el.Name),
			Description: describe(el.Name, el.Type),
		})
	}
	return params
}

// IsLineFunction reports whether the parameter set belongs to a
// detail-line function rather than a document-level one.
func IsLineFunction(params []types.Parameter) bool {
	for _, p := range params {
		lower := strings.ToLower(p.Name)
		for _, name := range lineFunctionNames {
			if lower == name {
				return true
			}
		}
	}
	return false
}

func mapXMLType(xmlType string) string {
	if t, ok := xmlTypeMap[strings.ToLower(xmlType)]; ok {
		return t
	}
	return "string"
}

func containsAny(name string, indicators []string) bool {
	lower := strings.ToLower(name)
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func isDropdownField(name string) bool {
	return containsAny(name, dropdownIndicators)
}

func isDateField(name, xmlType string) bool {
	switch strings.ToLower(xmlType) {
	case "date", "datetime":
		return true
	}
	return containsAny(name, dateIndicators)
}

func isAmountField(name string) bool {
	return containsAny(name, amountIndicators)
}

func describe(name, xmlType string) string {
	switch {
	case isDateField(name, xmlType):
		return "Date field"
	case isAmountField(name):
		return "Amount field"
	case isDropdownField(name):
		return "Selection field"
	case strings.EqualFold(xmlType, "boolean"):
		return "Boolean indicator"
	}
	return "Input field"
}

// normalizeName converts any naming convention to a declaration-case
// identifier: "doc_no" -> "DocNo".
func normalizeName(name string) string {
	clean := nonAlnum.ReplaceAllString(name, " ")
	words := strings.Fields(clean)
	for i, w := range words {
		words[i] = titleCaser.String(strings.ToLower(w))
	}
	return strings.Join(words, "")
}

func displayName(name string) string {
	clean := nonAlnum.ReplaceAllString(name, " ")
	words := strings.Fields(clean)
	for i, w := range words {
		words[i] = titleCaser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}
