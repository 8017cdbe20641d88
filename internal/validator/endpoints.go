package validator

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/rpkiconsole/rpkiconsole/internal/table"
)

// Roas lists validated ROA prefixes.
func (c *Client) Roas(ctx context.Context, q table.Query) (table.Page[Roa], error) {
	return list[Roa](ctx, c, "/api/roas", listParams(q))
}

// Bgp lists BGP announcements with their validity.
func (c *Client) Bgp(ctx context.Context, q table.Query) (table.Page[BgpAnnouncement], error) {
	return list[BgpAnnouncement](ctx, c, "/api/bgp/", listParams(q))
}

// AnnouncementValidity explains the validity of one announcement.
func (c *Client) AnnouncementValidity(ctx context.Context, asn, prefix string) (BgpValidity, error) {
	key := asn + "|" + prefix
	if c.validity != nil {
		if v, ok := c.validity.Get(key); ok {
			return v, nil
		}
	}

	params := url.Values{}
	params.Set("prefix", prefix)
	params.Set("asn", asn)
	v, err := get[BgpValidity](ctx, c, "/api/bgp/validity", params)
	if err != nil {
		return BgpValidity{}, err
	}

	if c.validity != nil {
		c.validity.Add(key, v)
	}
	return v, nil
}

// IgnoreFilters lists ignore filters.
func (c *Client) IgnoreFilters(ctx context.Context, q table.Query) (table.Page[IgnoreFilter], error) {
	return list[IgnoreFilter](ctx, c, "/api/ignore-filters", listParams(q))
}

// AddIgnoreFilter creates an ignore filter and returns it as stored.
func (c *Client) AddIgnoreFilter(ctx context.Context, f NewIgnoreFilter) (IgnoreFilter, error) {
	var env envelope[IgnoreFilter]
	err := c.do(ctx, http.MethodPost, "/api/ignore-filters", nil, command[NewIgnoreFilter]{Data: f}, &env)
	if err != nil {
		return IgnoreFilter{}, err
	}
	c.invalidateValidity()
	return env.Data, nil
}

// DeleteIgnoreFilter removes the ignore filter with id.
func (c *Client) DeleteIgnoreFilter(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/api/ignore-filters/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		return err
	}
	c.invalidateValidity()
	return nil
}

// Whitelist lists ROA prefix assertions.
func (c *Client) Whitelist(ctx context.Context, q table.Query) (table.Page[WhitelistEntry], error) {
	return list[WhitelistEntry](ctx, c, "/api/roa-prefix-assertions", listParams(q))
}

// AddWhitelistEntry creates a ROA prefix assertion.
func (c *Client) AddWhitelistEntry(ctx context.Context, e NewWhitelistEntry) (WhitelistEntry, error) {
	var env envelope[WhitelistEntry]
	err := c.do(ctx, http.MethodPost, "/api/roa-prefix-assertions", nil, command[NewWhitelistEntry]{Data: e}, &env)
	if err != nil {
		return WhitelistEntry{}, err
	}
	c.invalidateValidity()
	return env.Data, nil
}

// DeleteWhitelistEntry removes the ROA prefix assertion with id.
func (c *Client) DeleteWhitelistEntry(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, "/api/roa-prefix-assertions/"+strconv.FormatInt(id, 10), nil, nil, nil); err != nil {
		return err
	}
	c.invalidateValidity()
	return nil
}

// Announcement validity depends on whitelist and ignore filters.
func (c *Client) invalidateValidity() {
	if c.validity != nil {
		c.validity.Purge()
	}
}

// TrustAnchors lists all configured trust anchors.
func (c *Client) TrustAnchors(ctx context.Context) ([]TrustAnchor, error) {
	return get[[]TrustAnchor](ctx, c, "/api/trust-anchors", nil)
}

// TrustAnchor returns one trust anchor.
func (c *Client) TrustAnchor(ctx context.Context, id int64) (TrustAnchor, error) {
	if c.trustAnchors != nil {
		if ta, ok := c.trustAnchors.Get(id); ok {
			return ta, nil
		}
	}

	ta, err := get[TrustAnchor](ctx, c, "/api/trust-anchors/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return TrustAnchor{}, err
	}

	if c.trustAnchors != nil {
		c.trustAnchors.Add(id, ta)
	}
	return ta, nil
}

// TrustAnchorStatuses returns the validation summary of every trust anchor.
// The endpoint is not paged; see TrustAnchorStatusSource.
func (c *Client) TrustAnchorStatuses(ctx context.Context) ([]TrustAnchorStatus, error) {
	return get[[]TrustAnchorStatus](ctx, c, "/api/trust-anchors/statuses", nil)
}

// TrustAnchorStatusSource pages trust anchor statuses locally.
func (c *Client) TrustAnchorStatusSource() table.LocalSource[TrustAnchorStatus] {
	return table.LocalSource[TrustAnchorStatus]{
		Load: c.TrustAnchorStatuses,
		Match: func(s TrustAnchorStatus, term string) bool {
			return table.ContainsFold(term, s.Name)
		},
		Compare: map[string]func(a, b TrustAnchorStatus) int{
			"ta": func(a, b TrustAnchorStatus) int {
				return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
			},
			"errors":   func(a, b TrustAnchorStatus) int { return a.Errors - b.Errors },
			"warnings": func(a, b TrustAnchorStatus) int { return a.Warnings - b.Warnings },
			"successful": func(a, b TrustAnchorStatus) int {
				return a.Successful - b.Successful
			},
			"lastUpdated": func(a, b TrustAnchorStatus) int {
				return a.LastUpdatedTime().Compare(b.LastUpdatedTime())
			},
		},
	}
}

// ValidationChecks lists the checks of a trust anchor's latest validation
// run.
func (c *Client) ValidationChecks(ctx context.Context, taID int64, q table.Query) (table.Page[ValidationCheck], error) {
	path := "/api/trust-anchors/" + strconv.FormatInt(taID, 10) + "/validation-checks"

	var env envelope[jsoniter.RawMessage]
	if err := c.do(ctx, http.MethodGet, path, listParams(q), nil, &env); err != nil {
		return table.Page[ValidationCheck]{}, err
	}

	checks, err := decodeChecks(env.Data)
	if err != nil {
		return table.Page[ValidationCheck]{}, err
	}

	page := table.Page[ValidationCheck]{Rows: checks, TotalCount: len(checks)}
	if env.Metadata != nil {
		page.TotalCount = env.Metadata.TotalCount
	}
	return page, nil
}

// Older validators wrap the checks in {"validationChecks": [...]}.
func decodeChecks(data jsoniter.RawMessage) ([]ValidationCheck, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var checks []ValidationCheck
	if err := json.Unmarshal(data, &checks); err == nil {
		return checks, nil
	}

	var wrapped struct {
		ValidationChecks []ValidationCheck `json:"validationChecks"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.ValidationChecks, nil
}

// Repositories lists the repositories of a trust anchor.
func (c *Client) Repositories(ctx context.Context, taID int64, q table.Query) (table.Page[Repository], error) {
	params := listParams(q)
	params.Set("ta", strconv.FormatInt(taID, 10))
	return list[Repository](ctx, c, "/api/rpki-repositories", params)
}

// RepositoryStatuses counts a trust anchor's repositories by status.
func (c *Client) RepositoryStatuses(ctx context.Context, taID int64) (RepositoryStatuses, error) {
	return get[RepositoryStatuses](ctx, c, "/api/rpki-repositories/statuses/"+strconv.FormatInt(taID, 10), nil)
}
