package odata

import "github.com/yourorg/scaffold/pkg/types"

// maxDatatableFields bounds how many columns the generated datatable
// shows.
const maxDatatableFields = 8

// Summarize derives the document-level facts used by the generated
// module: which field acts as the primary key, which fields filter by
// user, and which bounded subset appears in the summary datatable.
func Summarize(fields []types.Field) types.DocumentInfo {
	info := types.DocumentInfo{
		UserFilterFields: make([]types.Field, 0),
		DatatableFields:  make([]types.Field, 0, maxDatatableFields),
	}

	for i := range fields {
		if fields[i].IsPrimaryKey {
			pk := fields[i]
			info.PrimaryKey = &pk
			break
		}
	}

	for _, f := range fields {
		if f.IsUserRelated {
			info.UserFilterFields = append(info.UserFilterFields, f)
		}
	}

	info.DatatableFields = selectDatatableFields(fields, info.PrimaryKey)
	return info
}

// selectDatatableFields ranks fields by category with per-category
// caps: primary key, then up to two dates, two amounts, one status,
// one boolean, then leftover fields until the limit. A field is
// counted once, at the earliest category it matches.
func selectDatatableFields(fields []types.Field, pk *types.Field) []types.Field {
	selected := make([]types.Field, 0, maxDatatableFields)
	taken := make(map[int]bool, len(fields))

	if pk != nil {
		for i := range fields {
			if fields[i].IsPrimaryKey {
				selected = append(selected, fields[i])
				taken[i] = true
				break
			}
		}
	}

	pick := func(match func(types.Field) bool, limit int) {
		count := 0
		for i, f := range fields {
			if count >= limit {
				return
			}
			if taken[i] || !match(f) {
				continue
			}
			selected = append(selected, f)
			taken[i] = true
			count++
		}
	}

	pick(func(f types.Field) bool { return f.IsDate }, 2)
	pick(func(f types.Field) bool { return f.IsAmount }, 2)
	pick(func(f types.Field) bool { return f.IsStatus }, 1)
	pick(func(f types.Field) bool { return f.IsBoolean }, 1)

	remaining := maxDatatableFields - len(selected)
	if remaining > 0 {
		pick(func(f types.Field) bool { return !f.IsPrimaryKey }, remaining)
	}

	if len(selected) > maxDatatableFields {
		selected = selected[:maxDatatableFields]
	}
	return selected
}
