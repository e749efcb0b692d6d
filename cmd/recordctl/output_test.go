package main

import (
	"reflect"
	"testing"
)

func TestOrderedKeysRecordColumnsFirst(t *testing.T) {
	data := map[string]any{
		"fields":     map[string]any{"empName": "John Doe"},
		"updated_at": "2026-03-01T12:00:00Z",
		"id":         "abc",
		"created_at": "2026-03-01T12:00:00Z",
		"extra":      "x",
	}
	got := orderedKeys(data)
	want := []string{"id", "created_at", "updated_at", "extra", "fields"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("orderedKeys = %v, want %v", got, want)
	}
}

func TestOrderedKeysNoRecordColumns(t *testing.T) {
	got := orderedKeys(map[string]any{"b": 1, "a": 2})
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("orderedKeys = %v, want %v", got, want)
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{float64(30), "30"},
		{float64(1.5), "1.5"},
		{true, "true"},
		{[]any{"a", float64(2)}, "a, 2"},
	}
	for _, c := range cases {
		if got := formatValue(c.in); got != c.want {
			t.Errorf("formatValue(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
