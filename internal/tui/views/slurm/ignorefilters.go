package slurm

import (
	"context"
	"strconv"
	"strings"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

// IgnoreFiltersView lists, adds and deletes ignore filters.
type IgnoreFiltersView struct {
	*editor[validator.IgnoreFilter]
}

// NewIgnoreFiltersView creates the ignore filters screen.
func NewIgnoreFiltersView(env views.Env) *IgnoreFiltersView {
	cols := []listview.Column[validator.IgnoreFilter]{
		views.Col("ASN", "asn", components.ColumnSpec{Fixed: 12, Priority: 4},
			func(f validator.IgnoreFilter) string { return orDash(string(f.ASN)) }),
		views.Col("Prefix", "prefix", components.ColumnSpec{MinWidth: 18, Weight: 1, Priority: 3},
			func(f validator.IgnoreFilter) string { return orDash(f.Prefix) }),
		views.Col("Comment", "comment", components.ColumnSpec{MinWidth: 12, Weight: 2, Priority: 2},
			func(f validator.IgnoreFilter) string { return f.Comment }),
		views.Col("Affected ROAs", "", components.ColumnSpec{Fixed: 15, Priority: 1},
			func(f validator.IgnoreFilter) string { return strconv.Itoa(len(f.AffectedRoas)) }),
	}

	client := env.Client
	e := &editor[validator.IgnoreFilter]{
		env:  env,
		id:   models.ViewIgnoreFilters,
		noun: "ignore filter",
		list: views.NewList(env, models.ViewIgnoreFilters, "IGNORE FILTERS", cols, client.IgnoreFilters, env.Options("prefix", table.Asc)),
		newForm: func() *components.Form {
			return components.NewForm("Add ignore filter", env.Styles).
				AddField("Prefix", "192.0.2.0/24", false, validatePrefix).
				AddField("ASN", "AS64496", false, validateASN).
				AddField("Comment", "", false, nil)
		},
		create: func(ctx context.Context, form *components.Form) (string, error) {
			f, err := ignoreFilterFromForm(form)
			if err != nil {
				return "", err
			}
			if _, err := client.AddIgnoreFilter(ctx, f); err != nil {
				return "", err
			}
			return describeFilter(f.ASN, f.Prefix), nil
		},
		remove: func(ctx context.Context, row validator.IgnoreFilter) error {
			return client.DeleteIgnoreFilter(ctx, row.ID)
		},
		describe: func(row validator.IgnoreFilter) string {
			return describeFilter(string(row.ASN), row.Prefix)
		},
	}
	return &IgnoreFiltersView{editor: e}
}

func ignoreFilterFromForm(form *components.Form) (validator.NewIgnoreFilter, error) {
	f := validator.NewIgnoreFilter{Comment: form.Value("Comment")}

	if s := form.Value("ASN"); s != "" {
		asn, err := NormalizeASN(s)
		if err != nil {
			return validator.NewIgnoreFilter{}, formError("ASN: " + err.Error())
		}
		f.ASN = asn
	}
	if s := form.Value("Prefix"); s != "" {
		p, err := ParsePrefix(s)
		if err != nil {
			return validator.NewIgnoreFilter{}, formError("Prefix: " + err.Error())
		}
		f.Prefix = p.String()
	}
	if f.ASN == "" && f.Prefix == "" {
		return validator.NewIgnoreFilter{}, formError("Enter a prefix, an ASN or both")
	}
	return f, nil
}

func describeFilter(asn, prefix string) string {
	return strings.TrimSpace(asn + " " + prefix)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
