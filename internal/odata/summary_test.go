package odata

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/yourorg/scaffold/pkg/types"
)

func fieldNames(fields []types.Field) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func TestSummarizeDatatableCategoryOrder(t *testing.T) {
	sample := []byte(`{"DocNo": "INV001", "Amount": 150.5, "IsPosted": true, "CreatedDate": "2024-01-15"}`)
	model, err := Parse(sample)
	if err != nil {
		t.Fatal(err)
	}
	got := fieldNames(model.Info.DatatableFields)
	want := []string{"DocNo", "CreatedDate", "Amount", "IsPosted"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("datatable = %v, want %v", got, want)
	}
}

func TestSummarizePrimaryKeyFirst(t *testing.T) {
	sample := []byte(`{"PostingDate": "2024-01-15", "Amount": 10.5, "VoucherNo": "V001"}`)
	model, err := Parse(sample)
	if err != nil {
		t.Fatal(err)
	}
	if model.Info.PrimaryKey == nil || model.Info.PrimaryKey.Name != "VoucherNo" {
		t.Fatalf("unexpected primary key %+v", model.Info.PrimaryKey)
	}
	got := fieldNames(model.Info.DatatableFields)
	if got[0] != "VoucherNo" {
		t.Fatalf("primary key must lead the datatable, got %v", got)
	}
}

func TestSummarizeStatusOnly(t *testing.T) {
	model, err := Parse([]byte(`{"Status": "Open"}`))
	if err != nil {
		t.Fatal(err)
	}
	if model.Info.PrimaryKey != nil {
		t.Fatalf("expected absent primary key")
	}
	got := fieldNames(model.Info.DatatableFields)
	if !reflect.DeepEqual(got, []string{"Status"}) {
		t.Fatalf("datatable = %v", got)
	}
	if model.Fields[0].Description != "Document status" {
		t.Fatalf("unexpected description %q", model.Fields[0].Description)
	}
}

func TestSummarizeCategoryCaps(t *testing.T) {
	fields := []types.Field{
		{Name: "D1", IsDate: true},
		{Name: "D2", IsDate: true},
		{Name: "D3", IsDate: true},
		{Name: "A1", IsAmount: true},
		{Name: "A2", IsAmount: true},
		{Name: "A3", IsAmount: true},
		{Name: "S1", IsStatus: true},
		{Name: "S2", IsStatus: true},
		{Name: "B1", IsBoolean: true},
		{Name: "B2", IsBoolean: true},
	}
	info := Summarize(fields)
	got := fieldNames(info.DatatableFields)
	want := []string{"D1", "D2", "A1", "A2", "S1", "B1", "D3", "A3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("datatable = %v, want %v", got, want)
	}
}

func TestSummarizeBoundedToEight(t *testing.T) {
	var fields []types.Field
	for i := 0; i < 20; i++ {
		fields = append(fields, types.Field{Name: fmt.Sprintf("Field%c", 'A'+i)})
	}
	info := Summarize(fields)
	if len(info.DatatableFields) != 8 {
		t.Fatalf("expected 8 datatable fields, got %d", len(info.DatatableFields))
	}
}

func TestSummarizeMultiRoleFieldCountedOnce(t *testing.T) {
	// A date that is also an amount occupies only the date slot.
	fields := []types.Field{
		{Name: "X", IsDate: true, IsAmount: true},
		{Name: "Y", IsAmount: true},
	}
	info := Summarize(fields)
	got := fieldNames(info.DatatableFields)
	want := []string{"X", "Y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("datatable = %v, want %v", got, want)
	}
}

func TestSummarizeUserFilterFieldsInOrder(t *testing.T) {
	fields := []types.Field{
		{Name: "Requestor", IsUserRelated: true},
		{Name: "Amount", IsAmount: true},
		{Name: "CreatedBy", IsUserRelated: true},
	}
	info := Summarize(fields)
	got := fieldNames(info.UserFilterFields)
	if !reflect.DeepEqual(got, []string{"Requestor", "CreatedBy"}) {
		t.Fatalf("user filter fields = %v", got)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	model, err := Parse([]byte(`{"DocNo": "1", "Amount": 2.5, "Status": "Open"}`))
	if err != nil {
		t.Fatal(err)
	}
	first := Summarize(model.Fields)
	second := Summarize(model.Fields)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("summarize is not idempotent")
	}
}
