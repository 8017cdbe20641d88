package models

import (
	"testing"

	"github.com/rpkiconsole/rpkiconsole/internal/table"
)

func TestViewID_Valid(t *testing.T) {
	for _, v := range []ViewID{ViewTrustAnchors, ViewRoas, ViewBgp, ViewIgnoreFilters, ViewWhitelist, ViewRepositories, ViewValidationChecks} {
		if !v.Valid() {
			t.Errorf("Expected %q to be valid", v)
		}
	}
	if ViewID("slurm").Valid() {
		t.Error("Unknown view should be invalid")
	}
}

func TestViewPreference_Validate(t *testing.T) {
	tests := []struct {
		name    string
		pref    ViewPreference
		wantErr bool
	}{
		{"valid", ViewPreference{View: ViewRoas, PageSize: 25, SortDirection: table.Asc}, false},
		{"sorted desc", ViewPreference{View: ViewBgp, PageSize: 10, SortColumn: "prefix", SortDirection: table.Desc}, false},
		{"unknown view", ViewPreference{View: "nope", PageSize: 10, SortDirection: table.Asc}, true},
		{"zero page size", ViewPreference{View: ViewRoas, SortDirection: table.Asc}, true},
		{"bad direction", ViewPreference{View: ViewRoas, PageSize: 10, SortDirection: "up"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pref.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestViewPreference_Apply(t *testing.T) {
	sizes := []int{10, 25, 50, 100}
	base := table.Options{PageSize: 10, SortColumn: "asn", SortDirection: table.Asc}

	p := ViewPreference{View: ViewRoas, PageSize: 50, SortColumn: "prefix", SortDirection: table.Desc}
	opts := p.Apply(base, sizes)
	if opts.PageSize != 50 || opts.SortColumn != "prefix" || opts.SortDirection != table.Desc {
		t.Errorf("Unexpected options %+v", opts)
	}

	p = ViewPreference{View: ViewRoas, PageSize: 15, SortDirection: table.Asc}
	opts = p.Apply(base, sizes)
	if opts.PageSize != 10 {
		t.Errorf("Unknown page size should be ignored, got %d", opts.PageSize)
	}
	if opts.SortColumn != "asn" {
		t.Errorf("Empty stored sort should keep the default, got %q", opts.SortColumn)
	}
}
