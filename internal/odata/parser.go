package odata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yourorg/scaffold/pkg/types"
)

// Model is the inferred field model for one sample record.
type Model struct {
	Fields []types.Field
	Info   types.DocumentInfo
}

var (
	invalidIdentChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	titleCaser        = cases.Title(language.English)
)

// Parse walks a raw JSON object and classifies every key/value pair in
// input order. Go maps do not preserve key order, so the object is
// token-walked rather than unmarshaled. The top level must be a JSON
// object; anything else is a request-level error.
func Parse(data []byte) (*Model, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse sample: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("sample must be a JSON object")
	}

	var fields []types.Field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse sample: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("sample must be a JSON object")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("parse sample value %q: %w", key, err)
		}
		fields = append(fields, buildField(key, value))
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse sample: %w", err)
	}

	return &Model{
		Fields: fields,
		Info:   Summarize(fields),
	}, nil
}

// buildField classifies one key/value pair. A panic during
// classification degrades that single field to an untyped descriptor
// instead of aborting the rest of the sample.
func buildField(key string, value any) (f types.Field) {
	defer func() {
		if r := recover(); r != nil {
			f = types.Field{
				Name:        key,
				CSharpName:  normalizeName(key),
				DisplayName: displayName(key),
				Type:        "object",
			}
		}
	}()

	return types.Field{
		Name:          key,
		CSharpName:    normalizeName(key),
		DisplayName:   displayName(key),
		Type:          inferType(key, value),
		IsPrimaryKey:  isPrimaryKey(key),
		IsDate:        isDateField(key, value),
		IsAmount:      isAmountField(key),
		IsStatus:      isStatusField(key),
		IsUserRelated: isUserRelated(key),
		IsBoolean:     isBooleanField(key, value),
		Description:   describe(key, value),
	}
}

// normalizeName strips characters that are not valid in an identifier.
// Underscores survive so the JSON mapping stays visible. Distinct keys
// that normalize identically are kept as-is; collisions are the
// caller's problem.
func normalizeName(name string) string {
	return invalidIdentChars.ReplaceAllString(name, "")
}

func displayName(name string) string {
	clean := strings.ReplaceAll(normalizeName(name), "_", " ")
	words := strings.Fields(clean)
	for i, w := range words {
		words[i] = titleCaser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}
