package validator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rpkiconsole/rpkiconsole/internal/table"
	"github.com/rpkiconsole/rpkiconsole/internal/testutil"
)

func newTestClient(t *testing.T, fake *testutil.FakeValidator, opts ...func(*Options)) *Client {
	t.Helper()

	o := Options{
		BaseURL:   fake.URL,
		Timeout:   5 * time.Second,
		CacheSize: 16,
		CacheTTL:  time.Minute,
	}
	for _, fn := range opts {
		fn(&o)
	}

	c, err := New(o)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New(Options{BaseURL: "localhost:8080"}); err == nil {
		t.Error("Expected error for a URL without scheme")
	}
	if _, err := New(Options{BaseURL: "/api"}); err == nil {
		t.Error("Expected error for a URL without host")
	}
}

func TestClient_Roas(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)

	page, err := c.Roas(context.Background(), table.Query{
		FirstItemIndex: 10,
		PageSize:       10,
		SortColumn:     "asn",
		SortDirection:  table.Desc,
	})
	if err != nil {
		t.Fatalf("Roas: %v", err)
	}

	if len(page.Rows) != 10 {
		t.Fatalf("Expected 10 rows, got %d", len(page.Rows))
	}
	if page.TotalCount != testutil.FakeRoaCount {
		t.Errorf("Expected total %d, got %d", testutil.FakeRoaCount, page.TotalCount)
	}
	if page.AbsoluteKnown {
		t.Error("Validator does not report an absolute count")
	}
	// Descending from AS64535, the 11th row is AS64525.
	if page.Rows[0].ASN != "AS64525" {
		t.Errorf("Expected AS64525 first, got %s", page.Rows[0].ASN)
	}

	req, ok := fake.LastRequest("/api/roas")
	if !ok {
		t.Fatal("Expected a request to /api/roas")
	}
	for key, want := range map[string]string{
		"startFrom":     "10",
		"pageSize":      "10",
		"search":        "",
		"sortBy":        "asn",
		"sortDirection": "desc",
	} {
		if got := req.Query.Get(key); got != want {
			t.Errorf("Expected %s=%q, got %q", key, want, got)
		}
	}
	if !req.Query.Has("search") {
		t.Error("Expected an explicit empty search parameter")
	}
}

func TestClient_UnsortedOmitsSortParams(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)

	if _, err := c.Bgp(context.Background(), table.Query{PageSize: 25, SearchTerm: "invalid"}); err != nil {
		t.Fatalf("Bgp: %v", err)
	}

	req, _ := fake.LastRequest("/api/bgp/")
	if req.Query.Has("sortBy") || req.Query.Has("sortDirection") {
		t.Errorf("Expected no sort parameters, got %v", req.Query)
	}
	if req.Query.Get("search") != "invalid" {
		t.Errorf("Expected search=invalid, got %q", req.Query.Get("search"))
	}
}

func TestClient_SearchTotalCount(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)

	page, err := c.Roas(context.Background(), table.Query{PageSize: 10, SearchTerm: "bobo"})
	if err != nil {
		t.Fatalf("Roas: %v", err)
	}
	if page.TotalCount != 2 || len(page.Rows) != 2 {
		t.Errorf("Expected 2 matches, got total %d rows %d", page.TotalCount, len(page.Rows))
	}
}

func TestClient_RequestID(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)

	ctx := context.Background()
	for range 2 {
		if _, err := c.TrustAnchors(ctx); err != nil {
			t.Fatalf("TrustAnchors: %v", err)
		}
	}

	reqs := fake.Requests()
	if len(reqs) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(reqs))
	}

	ids := map[string]bool{}
	for _, r := range reqs {
		id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		if err != nil {
			t.Fatalf("Expected a UUID request id, got %q", r.Header.Get(RequestIDHeader))
		}
		if id.Version() != 7 {
			t.Errorf("Expected a version 7 UUID, got %d", id.Version())
		}
		ids[id.String()] = true
	}
	if len(ids) != 2 {
		t.Error("Expected a fresh request id per request")
	}
}

func TestClient_APIError(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)
	ctx := context.Background()

	_, err := c.TrustAnchor(ctx, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	fake.SetFailing(true)
	_, err = c.Roas(ctx, table.Query{PageSize: 10})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", apiErr.StatusCode)
	}
	if apiErr.Detail != "validator unavailable" {
		t.Errorf("Expected detail from the error body, got %q", apiErr.Detail)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("500 should not match ErrNotFound")
	}
}

func TestClient_ErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.TrustAnchors(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("Expected a 502 APIError, got %v", err)
	}
	if apiErr.Error() != "validator returned 502: Bad Gateway" {
		t.Errorf("Unexpected message %q", apiErr.Error())
	}
}

func TestClient_TrustAnchorCache(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)
	ctx := context.Background()

	for range 3 {
		ta, err := c.TrustAnchor(ctx, 4)
		if err != nil {
			t.Fatalf("TrustAnchor: %v", err)
		}
		if ta.Name != testutil.BoboTA || ta.InitialValidationDone {
			t.Errorf("Unexpected trust anchor %+v", ta)
		}
	}

	if n := fake.CountRequests("/api/trust-anchors/4"); n != 1 {
		t.Errorf("Expected 1 request with caching, got %d", n)
	}
}

func TestClient_CacheDisabled(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake, func(o *Options) { o.CacheSize = 0 })
	ctx := context.Background()

	for range 2 {
		if _, err := c.TrustAnchor(ctx, 1); err != nil {
			t.Fatal(err)
		}
	}
	if n := fake.CountRequests("/api/trust-anchors/1"); n != 2 {
		t.Errorf("Expected 2 requests without caching, got %d", n)
	}
}

func TestClient_ValidityInvalidatedByMutation(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)
	ctx := context.Background()

	v, err := c.AnnouncementValidity(ctx, "AS64496", "10.0.0.0/16")
	if err != nil {
		t.Fatalf("AnnouncementValidity: %v", err)
	}
	if v.Validity != "VALID" || len(v.ValidatingRoas) != 1 {
		t.Errorf("Unexpected validity %+v", v)
	}
	if _, err := c.AnnouncementValidity(ctx, "AS64496", "10.0.0.0/16"); err != nil {
		t.Fatal(err)
	}
	if n := fake.CountRequests("/api/bgp/validity"); n != 1 {
		t.Fatalf("Expected cached validity, got %d requests", n)
	}

	added, err := c.AddWhitelistEntry(ctx, NewWhitelistEntry{ASN: "AS64496", Prefix: "10.0.0.0/16"})
	if err != nil {
		t.Fatalf("AddWhitelistEntry: %v", err)
	}
	if added.ID == 0 {
		t.Error("Expected the stored entry to carry an id")
	}

	if _, err := c.AnnouncementValidity(ctx, "AS64496", "10.0.0.0/16"); err != nil {
		t.Fatal(err)
	}
	if n := fake.CountRequests("/api/bgp/validity"); n != 2 {
		t.Errorf("Expected validity refetch after mutation, got %d requests", n)
	}
}

func TestClient_WhitelistRoundTrip(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)
	ctx := context.Background()

	entry, err := c.AddWhitelistEntry(ctx, NewWhitelistEntry{
		ASN:           "AS65000",
		Prefix:        "192.0.2.0/25",
		MaximumLength: 25,
		Comment:       "test",
	})
	if err != nil {
		t.Fatalf("AddWhitelistEntry: %v", err)
	}

	req, _ := fake.LastRequest("/api/roa-prefix-assertions")
	if req.Method != http.MethodPost {
		t.Fatalf("Expected POST, got %s", req.Method)
	}
	want := `{"data":{"asn":"AS65000","prefix":"192.0.2.0/25","maximumLength":25,"comment":"test"}}`
	if req.Body != want {
		t.Errorf("Expected body %s, got %s", want, req.Body)
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %q", req.Header.Get("Content-Type"))
	}

	page, err := c.Whitelist(ctx, table.Query{PageSize: 10, SearchTerm: "65000"})
	if err != nil {
		t.Fatalf("Whitelist: %v", err)
	}
	if page.TotalCount != 1 || page.Rows[0].ID != entry.ID {
		t.Errorf("Expected the new entry back, got %+v", page)
	}

	if err := c.DeleteWhitelistEntry(ctx, entry.ID); err != nil {
		t.Fatalf("DeleteWhitelistEntry: %v", err)
	}
	if fake.WhitelistLen() != 2 {
		t.Errorf("Expected 2 entries after delete, got %d", fake.WhitelistLen())
	}
	if err := c.DeleteWhitelistEntry(ctx, entry.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestClient_IgnoreFilters(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)
	ctx := context.Background()

	if _, err := c.AddIgnoreFilter(ctx, NewIgnoreFilter{Comment: "empty"}); err == nil {
		t.Error("Expected the validator to reject a filter without asn or prefix")
	}

	f, err := c.AddIgnoreFilter(ctx, NewIgnoreFilter{ASN: "AS64511", Comment: "noisy"})
	if err != nil {
		t.Fatalf("AddIgnoreFilter: %v", err)
	}
	if fake.IgnoreFilterLen() != 2 {
		t.Errorf("Expected 2 filters, got %d", fake.IgnoreFilterLen())
	}
	if err := c.DeleteIgnoreFilter(ctx, f.ID); err != nil {
		t.Fatalf("DeleteIgnoreFilter: %v", err)
	}
	if fake.IgnoreFilterLen() != 1 {
		t.Errorf("Expected 1 filter, got %d", fake.IgnoreFilterLen())
	}
}

func TestClient_ValidationChecks(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)
	ctx := context.Background()

	page, err := c.ValidationChecks(ctx, 1, table.Query{PageSize: 5})
	if err != nil {
		t.Fatalf("ValidationChecks: %v", err)
	}
	if len(page.Rows) != 5 || page.TotalCount != 12 {
		t.Errorf("Expected 5 of 12 checks, got %d of %d", len(page.Rows), page.TotalCount)
	}

	page, err = c.ValidationChecks(ctx, 2, table.Query{PageSize: 5})
	if err != nil {
		t.Fatalf("ValidationChecks (wrapped): %v", err)
	}
	if len(page.Rows) != 1 || page.Rows[0].Key != "validator.crl.stale" {
		t.Errorf("Expected the wrapped check, got %+v", page.Rows)
	}
}

func TestDecodeChecks(t *testing.T) {
	checks, err := decodeChecks([]byte(`[{"location":"a","status":"ERROR"}]`))
	if err != nil || len(checks) != 1 || checks[0].Status != "ERROR" {
		t.Errorf("Array shape: %v %+v", err, checks)
	}

	checks, err = decodeChecks([]byte(`{"validationChecks":[{"location":"b"},{"location":"c"}]}`))
	if err != nil || len(checks) != 2 {
		t.Errorf("Wrapped shape: %v %+v", err, checks)
	}

	checks, err = decodeChecks(nil)
	if err != nil || checks != nil {
		t.Errorf("Empty data: %v %+v", err, checks)
	}

	if _, err := decodeChecks([]byte(`"nope"`)); err == nil {
		t.Error("Expected error for a string")
	}
}

func TestClient_Repositories(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)
	ctx := context.Background()

	page, err := c.Repositories(ctx, 1, table.Query{PageSize: 10, SortColumn: "status", SortDirection: table.Asc})
	if err != nil {
		t.Fatalf("Repositories: %v", err)
	}
	if page.TotalCount != 15 || len(page.Rows) != 10 {
		t.Errorf("Expected 10 of 15, got %d of %d", len(page.Rows), page.TotalCount)
	}
	req, _ := fake.LastRequest("/api/rpki-repositories")
	if req.Query.Get("ta") != "1" {
		t.Errorf("Expected ta=1, got %q", req.Query.Get("ta"))
	}

	counts, err := c.RepositoryStatuses(ctx, 1)
	if err != nil {
		t.Fatalf("RepositoryStatuses: %v", err)
	}
	if counts.Total() != 15 {
		t.Errorf("Expected 15 repositories, got %d", counts.Total())
	}
	if counts.Failed == 0 || counts.Pending == 0 || counts.Downloaded == 0 {
		t.Errorf("Expected every status to be counted, got %+v", counts)
	}
}

func TestClient_TrustAnchorStatusSource(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake)

	src := c.TrustAnchorStatusSource()
	page, err := src.Fetch(context.Background(), table.Query{PageSize: 2, SortColumn: "errors", SortDirection: table.Desc})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(page.Rows) != 2 || page.Rows[0].Errors != 3 {
		t.Errorf("Expected most errors first, got %+v", page.Rows)
	}
	if !page.AbsoluteKnown || page.AbsoluteCount != 4 {
		t.Errorf("Expected absolute count 4, got %d (known %v)", page.AbsoluteCount, page.AbsoluteKnown)
	}

	page, err = src.Fetch(context.Background(), table.Query{PageSize: 10, SearchTerm: "bobo"})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalCount != 1 || page.AbsoluteCount != 4 {
		t.Errorf("Expected 1 of 4, got %d of %d", page.TotalCount, page.AbsoluteCount)
	}
}

func TestClient_RateLimit(t *testing.T) {
	fake := testutil.NewFakeValidator(t)
	c := newTestClient(t, fake, func(o *Options) {
		o.RequestsPerSecond = 10
		o.Burst = 1
	})
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		if _, err := c.TrustAnchorStatuses(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("Expected paced requests, 3 took %v", elapsed)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := c.TrustAnchorStatuses(cancelled); err == nil {
		t.Error("Expected error for a cancelled context")
	}
}
