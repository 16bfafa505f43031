// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package citation

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseHref(t *testing.T) {
	tests := []struct {
		href   string
		want   []int
		wantOK bool
	}{
		{"#cite-7", []int{7}, true},
		{"#cite-group-1-2-3", []int{1, 2, 3}, true},
		{"#cite-group-4", []int{4}, true},
		{"#cite-group-2-2", []int{2, 2}, true},
		{"#cite-", nil, false},
		{"#cite-group-", nil, false},
		{"#cite-group-1--2", nil, false},
		{"#cite-1-2", nil, false},
		{"#cite-x", nil, false},
		{"#section", nil, false},
		{"https://example.com/#cite-1", nil, false},
	}
	for _, tt := range tests {
		got, ok := ParseHref(tt.href)
		if ok != tt.wantOK || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseHref(%q) = %v, %v; want %v, %v", tt.href, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestHrefRoundTrip(t *testing.T) {
	for _, numbers := range [][]int{{1}, {4, 5}, {3, 1, 3}} {
		got, ok := ParseHref(Href(numbers...))
		if !ok || !reflect.DeepEqual(got, numbers) {
			t.Errorf("ParseHref(Href(%v)) = %v, %v", numbers, got, ok)
		}
	}
	if Label(1, 2) != "1,2" {
		t.Errorf("Label(1, 2) = %q", Label(1, 2))
	}
	if CardID("m1", 3) != "cite-m1-3" {
		t.Errorf("CardID = %q", CardID("m1", 3))
	}
}

func TestFromHrefs_CitedSubset(t *testing.T) {
	got := FromHrefs([]string{"#cite-2", "#cite-group-4-5"}, 5)
	want := NewSet(1, 3, 4)
	if !got.Equal(want) {
		t.Errorf("FromHrefs = %v, want %v", got.Sorted(), want.Sorted())
	}
}

func TestFromHrefs_OutOfRangeIgnored(t *testing.T) {
	got := FromHrefs([]string{"#cite-0", "#cite-6", "#cite-group-5-9", "#bogus"}, 5)
	if !got.Equal(NewSet(4)) {
		t.Errorf("FromHrefs = %v, want [4]", got.Sorted())
	}
}

func TestFromText_Fallback(t *testing.T) {
	got := FromText("first [2] then [4] and [9]", 4)
	if !got.Equal(NewSet(1, 3)) {
		t.Errorf("FromText = %v, want [1 3]", got.Sorted())
	}
}

func TestFromText_PartlyRewritten(t *testing.T) {
	got := FromText("[1,2](#cite-group-1-2) and [3]", 5)
	if !got.Equal(NewSet(0, 1, 2)) {
		t.Errorf("FromText = %v, want [0 1 2]", got.Sorted())
	}
}

func TestFirstMatch(t *testing.T) {
	empty := Strategy{Name: SourceDOM, Discover: func(int) Set { return NewSet() }}
	text := Strategy{Name: SourceText, Discover: func(count int) Set { return FromText("[1]", count) }}
	dom := Strategy{Name: SourceDOM, Discover: func(count int) Set { return FromHrefs([]string{"#cite-2"}, count) }}

	got, src := FirstMatch(3, dom, text)
	if src != SourceDOM || !got.Equal(NewSet(1)) {
		t.Errorf("dom first: got %v from %s", got.Sorted(), src)
	}

	got, src = FirstMatch(3, empty, text)
	if src != SourceText || !got.Equal(NewSet(0)) {
		t.Errorf("text fallback: got %v from %s", got.Sorted(), src)
	}

	got, src = FirstMatch(3, empty, Strategy{Name: "nil"})
	if src != SourceNone || got.Len() != 0 {
		t.Errorf("none: got %v from %s", got.Sorted(), src)
	}
}

func TestSelect(t *testing.T) {
	records := []Record{{Index: 1}, {Index: 2}, {Index: 3}}
	cited := NewSet(0, 2)

	if got := Select(records, cited, true); len(got) != 3 {
		t.Errorf("showAll: got %d records", len(got))
	}
	got := Select(records, cited, false)
	if len(got) != 2 || got[0].Index != 1 || got[1].Index != 3 {
		t.Errorf("cited only: got %+v", got)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		cited, total int
		want         string
	}{
		{3, 5, "3 cited (of 5)"},
		{0, 2, "0 cited (of 2)"},
		{5, 5, "5 sources"},
		{1, 1, "1 source"},
		{0, 0, "0 sources"},
	}
	for _, tt := range tests {
		if got := Summary(tt.cited, tt.total); got != tt.want {
			t.Errorf("Summary(%d, %d) = %q, want %q", tt.cited, tt.total, got, tt.want)
		}
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`see \[1\]\[2\]`, "see [1][2]"},
		{`keep \[note\]`, `keep \[note\]`},
		{"café [1]", "café [1]"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := Unescape(tt.input); got != tt.want {
			t.Errorf("Unescape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
	if got := Rewrite(Unescape(`a \[1\]\[2\]`)); got != "a [1,2](#cite-group-1-2)" {
		t.Errorf("unescape then rewrite = %q", got)
	}
}

func TestRecordHelpers(t *testing.T) {
	r := Record{URL: "https://www.Example.com/a?b=1", Index: 1}
	if r.Domain() != "example.com" {
		t.Errorf("Domain() = %q", r.Domain())
	}
	if r.DisplayTitle() != "example.com" {
		t.Errorf("DisplayTitle() = %q", r.DisplayTitle())
	}
	r.SiteName = "Example"
	if r.DisplayTitle() != "Example" {
		t.Errorf("DisplayTitle() with site = %q", r.DisplayTitle())
	}
	r.Title = "A title"
	if r.DisplayTitle() != "A title" {
		t.Errorf("DisplayTitle() with title = %q", r.DisplayTitle())
	}
	if (Record{URL: "not a url"}).Domain() != "" {
		t.Error("expected empty domain for hostless URL")
	}
}

func TestValidateList(t *testing.T) {
	good := []Record{{URL: "https://a", Index: 1}, {URL: "https://b", Index: 2}}
	if err := ValidateList(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []Record{{URL: "https://a", Index: 1}, {URL: "https://b", Index: 3}}
	err := ValidateList(bad)
	var listErr *ListError
	if !errors.As(err, &listErr) {
		t.Fatalf("expected *ListError, got %v", err)
	}
	if listErr.Position != 1 || listErr.Want != 2 {
		t.Errorf("unexpected error detail: %+v", listErr)
	}

	if err := ValidateList([]Record{{Index: 1}}); err == nil {
		t.Error("expected error for missing url")
	}
}
