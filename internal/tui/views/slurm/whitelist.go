package slurm

import (
	"context"
	"strconv"

	"github.com/rpkiconsole/rpkiconsole/internal/models"
	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/components"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views"
	"github.com/rpkiconsole/rpkiconsole/internal/tui/views/listview"
	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

// WhitelistView lists, adds and deletes ROA prefix assertions.
type WhitelistView struct {
	*editor[validator.WhitelistEntry]
}

// NewWhitelistView creates the whitelist screen.
func NewWhitelistView(env views.Env) *WhitelistView {
	cols := []listview.Column[validator.WhitelistEntry]{
		views.Col("ASN", "asn", components.ColumnSpec{Fixed: 12, Priority: 4},
			func(e validator.WhitelistEntry) string { return string(e.ASN) }),
		views.Col("Prefix", "prefix", components.ColumnSpec{MinWidth: 18, Weight: 1, Priority: 3},
			func(e validator.WhitelistEntry) string { return e.Prefix }),
		views.Col("Max length", "maximumLength", components.ColumnSpec{Fixed: 12, Priority: 1},
			func(e validator.WhitelistEntry) string {
				if e.MaximumLength == 0 {
					return "-"
				}
				return strconv.Itoa(e.MaximumLength)
			}),
		views.Col("Comment", "comment", components.ColumnSpec{MinWidth: 12, Weight: 2, Priority: 2},
			func(e validator.WhitelistEntry) string { return e.Comment }),
	}

	client := env.Client
	e := &editor[validator.WhitelistEntry]{
		env:  env,
		id:   models.ViewWhitelist,
		noun: "whitelist entry",
		list: views.NewList(env, models.ViewWhitelist, "WHITELIST", cols, client.Whitelist, env.Options("asn", table.Asc)),
		newForm: func() *components.Form {
			return components.NewForm("Add whitelist entry", env.Styles).
				AddField("ASN", "AS64496", true, validateASN).
				AddField("Prefix", "192.0.2.0/24", true, validatePrefix).
				AddField("Max length", "optional", false, validateNumber).
				AddField("Comment", "", false, nil)
		},
		create: func(ctx context.Context, form *components.Form) (string, error) {
			entry, err := whitelistEntryFromForm(form)
			if err != nil {
				return "", err
			}
			if _, err := client.AddWhitelistEntry(ctx, entry); err != nil {
				return "", err
			}
			return entry.ASN + " " + entry.Prefix, nil
		},
		remove: func(ctx context.Context, row validator.WhitelistEntry) error {
			return client.DeleteWhitelistEntry(ctx, row.ID)
		},
		describe: func(row validator.WhitelistEntry) string {
			return string(row.ASN) + " " + row.Prefix
		},
	}
	return &WhitelistView{editor: e}
}

func whitelistEntryFromForm(form *components.Form) (validator.NewWhitelistEntry, error) {
	asn, err := NormalizeASN(form.Value("ASN"))
	if err != nil {
		return validator.NewWhitelistEntry{}, formError("ASN: " + err.Error())
	}
	prefix, err := ParsePrefix(form.Value("Prefix"))
	if err != nil {
		return validator.NewWhitelistEntry{}, formError("Prefix: " + err.Error())
	}

	entry := validator.NewWhitelistEntry{
		ASN:     asn,
		Prefix:  prefix.String(),
		Comment: form.Value("Comment"),
	}
	if s := form.Value("Max length"); s != "" {
		n, err := ParseMaxLength(s, prefix)
		if err != nil {
			return validator.NewWhitelistEntry{}, formError("Max length: " + err.Error())
		}
		entry.MaximumLength = n
	}
	return entry, nil
}
