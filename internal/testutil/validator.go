package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BoboTA is the trust anchor whose initial validation never completes. Two
// of the fake ROAs belong to it.
const BoboTA = "Bobo Test TA"

// FakeRoaCount is the number of ROAs the fake validator serves.
const FakeRoaCount = 40

// Wire rows served by FakeValidator.
type (
	FakeRoa struct {
		ASN         string `json:"asn"`
		Prefix      string `json:"prefix"`
		Length      int    `json:"length"`
		TrustAnchor string `json:"trustAnchor"`
		URI         string `json:"uri"`
	}

	FakeAnnouncement struct {
		ASN      string `json:"asn"`
		Prefix   string `json:"prefix"`
		Validity string `json:"validity"`
	}

	FakeFilter struct {
		ID            int64  `json:"id"`
		ASN           string `json:"asn,omitempty"`
		Prefix        string `json:"prefix,omitempty"`
		MaximumLength int    `json:"maximumLength,omitempty"`
		Comment       string `json:"comment,omitempty"`
	}

	FakeTrustAnchor struct {
		ID        int64    `json:"id"`
		Name      string   `json:"name"`
		Locations []string `json:"locations"`
		Done      bool     `json:"initialCertificateTreeValidationRunCompleted"`
	}

	FakeStatus struct {
		ID          int64  `json:"id"`
		Name        string `json:"taName"`
		Successful  int    `json:"successful"`
		Warnings    int    `json:"warnings"`
		Errors      int    `json:"errors"`
		LastUpdated string `json:"lastUpdated"`
	}

	FakeCheck struct {
		Location         string `json:"location"`
		Status           string `json:"status"`
		Key              string `json:"key"`
		FormattedMessage string `json:"formattedMessage"`
	}

	FakeRepository struct {
		ID           int64  `json:"id"`
		Type         string `json:"type"`
		Location     string `json:"locationURI"`
		Status       string `json:"status"`
		LastDownload string `json:"lastDownloadedAt,omitempty"`
	}
)

// RecordedRequest is a request seen by FakeValidator.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

// FakeValidator is an in-process validator API with fixed fixture data.
// Paged endpoints honour startFrom, pageSize, search, sortBy and
// sortDirection the way the real validator does.
type FakeValidator struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	failing  bool
	nextID   int64

	roas         []FakeRoa
	bgp          []FakeAnnouncement
	whitelist    []FakeFilter
	filters      []FakeFilter
	trustAnchors []FakeTrustAnchor
	statuses     []FakeStatus
	checks       map[int64][]FakeCheck
	repositories map[int64][]FakeRepository
}

// NewFakeValidator starts a fake validator that is closed with the test.
func NewFakeValidator(t *testing.T) *FakeValidator {
	t.Helper()

	f := &FakeValidator{nextID: 100}
	f.seed()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/roas", f.handleRoas)
	mux.HandleFunc("GET /api/bgp/", f.handleBgp)
	mux.HandleFunc("GET /api/bgp/validity", f.handleValidity)
	mux.HandleFunc("GET /api/roa-prefix-assertions", f.listFilters(&f.whitelist))
	mux.HandleFunc("POST /api/roa-prefix-assertions", f.addFilter(&f.whitelist))
	mux.HandleFunc("DELETE /api/roa-prefix-assertions/{id}", f.deleteFilter(&f.whitelist))
	mux.HandleFunc("GET /api/ignore-filters", f.listFilters(&f.filters))
	mux.HandleFunc("POST /api/ignore-filters", f.addFilter(&f.filters))
	mux.HandleFunc("DELETE /api/ignore-filters/{id}", f.deleteFilter(&f.filters))
	mux.HandleFunc("GET /api/trust-anchors", f.handleTrustAnchors)
	mux.HandleFunc("GET /api/trust-anchors/statuses", f.handleStatuses)
	mux.HandleFunc("GET /api/trust-anchors/{id}", f.handleTrustAnchor)
	mux.HandleFunc("GET /api/trust-anchors/{id}/validation-checks", f.handleChecks)
	mux.HandleFunc("GET /api/rpki-repositories", f.handleRepositories)
	mux.HandleFunc("GET /api/rpki-repositories/statuses/{id}", f.handleRepositoryStatuses)

	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Close)
	return f
}

var trustAnchorNames = []string{"RIPE NCC RPKI Root", "APNIC RPKI Root", "ARIN RPKI Root"}

func (f *FakeValidator) seed() {
	for i := range FakeRoaCount {
		ta := trustAnchorNames[i%len(trustAnchorNames)]
		if i == 7 || i == 23 {
			ta = BoboTA
		}
		f.roas = append(f.roas, FakeRoa{
			ASN:         fmt.Sprintf("AS%d", 64496+i),
			Prefix:      fmt.Sprintf("10.%d.0.0/16", i),
			Length:      16 + i%9,
			TrustAnchor: ta,
			URI:         fmt.Sprintf("rsync://rpki.example.net/repo/%02d.roa", i),
		})
	}

	validities := []string{"VALID", "INVALID_ASN", "INVALID_LENGTH", "UNKNOWN"}
	for i := range 30 {
		f.bgp = append(f.bgp, FakeAnnouncement{
			ASN:      fmt.Sprintf("AS%d", 64496+i),
			Prefix:   fmt.Sprintf("10.%d.0.0/16", i),
			Validity: validities[i%len(validities)],
		})
	}

	f.whitelist = []FakeFilter{
		{ID: 1, ASN: "AS64500", Prefix: "192.0.2.0/24", MaximumLength: 24, Comment: "lab"},
		{ID: 2, ASN: "AS64501", Prefix: "198.51.100.0/24", Comment: "customer"},
	}
	f.filters = []FakeFilter{
		{ID: 3, Prefix: "203.0.113.0/24", Comment: "documentation"},
	}

	f.trustAnchors = []FakeTrustAnchor{
		{ID: 1, Name: trustAnchorNames[0], Locations: []string{"rsync://rpki.ripe.net/ta/ripe-ncc-ta.cer"}, Done: true},
		{ID: 2, Name: trustAnchorNames[1], Locations: []string{"rsync://rpki.apnic.net/repository/apnic-rpki-root-iana-origin.cer"}, Done: true},
		{ID: 3, Name: trustAnchorNames[2], Locations: []string{"rsync://rpki.arin.net/repository/arin-rpki-ta.cer"}, Done: true},
		{ID: 4, Name: BoboTA, Locations: []string{"rsync://bobo.example.net/ta.cer"}, Done: false},
	}
	f.statuses = []FakeStatus{
		{ID: 1, Name: trustAnchorNames[0], Successful: 31000, Warnings: 12, Errors: 3, LastUpdated: "2026-10-15T08:00:00Z"},
		{ID: 2, Name: trustAnchorNames[1], Successful: 14000, Warnings: 4, Errors: 0, LastUpdated: "2026-10-15T07:30:00Z"},
		{ID: 3, Name: trustAnchorNames[2], Successful: 9000, Warnings: 0, Errors: 1, LastUpdated: "2026-10-15T07:45:00Z"},
		{ID: 4, Name: BoboTA, LastUpdated: ""},
	}

	f.checks = map[int64][]FakeCheck{}
	for i := range 12 {
		status := "WARNING"
		if i%4 == 0 {
			status = "ERROR"
		}
		f.checks[1] = append(f.checks[1], FakeCheck{
			Location:         fmt.Sprintf("rsync://rpki.ripe.net/repository/%02d.mft", i),
			Status:           status,
			Key:              "validator.manifest.next.update.time.before.now",
			FormattedMessage: fmt.Sprintf("Manifest %d is stale", i),
		})
	}
	f.checks[2] = []FakeCheck{
		{Location: "rsync://rpki.apnic.net/repository/a.crl", Status: "WARNING", Key: "validator.crl.stale", FormattedMessage: "CRL is stale"},
	}

	f.repositories = map[int64][]FakeRepository{}
	repoStatuses := []string{"DOWNLOADED", "DOWNLOADED", "PENDING", "FAILED"}
	for i := range 15 {
		r := FakeRepository{
			ID:       int64(i + 1),
			Type:     "RSYNC",
			Location: fmt.Sprintf("rsync://repo%02d.example.net/repository/", i),
			Status:   repoStatuses[i%len(repoStatuses)],
		}
		if i%2 == 0 {
			r.Type = "RRDP"
		}
		if r.Status == "DOWNLOADED" {
			r.LastDownload = "2026-10-15T08:00:00Z"
		}
		f.repositories[1] = append(f.repositories[1], r)
	}
}

// SetFailing makes every endpoint answer 500 until reset.
func (f *FakeValidator) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

// Requests returns the requests seen so far.
func (f *FakeValidator) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

// LastRequest returns the most recent request to path.
func (f *FakeValidator) LastRequest(path string) (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Path == path {
			return f.requests[i], true
		}
	}
	return RecordedRequest{}, false
}

// CountRequests returns how many requests hit path.
func (f *FakeValidator) CountRequests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// WhitelistLen returns the number of stored whitelist entries.
func (f *FakeValidator) WhitelistLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.whitelist)
}

// IgnoreFilterLen returns the number of stored ignore filters.
func (f *FakeValidator) IgnoreFilterLen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.filters)
}

func (f *FakeValidator) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		failing := f.failing
		f.mu.Unlock()

		if failing {
			writeError(w, http.StatusInternalServerError, "internal", "Internal Server Error", "validator unavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, title, detail string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]string{{
			"status": strconv.Itoa(status),
			"code":   code,
			"title":  title,
			"detail": detail,
		}},
	})
}

type pageSpec[T any] struct {
	match   func(row T, term string) bool
	compare map[string]func(a, b T) int
}

// writePage filters, sorts and slices rows per the request's paging
// parameters and writes the validator's list envelope.
func writePage[T any](w http.ResponseWriter, r *http.Request, rows []T, spec pageSpec[T]) {
	q := r.URL.Query()

	term := strings.ToLower(strings.TrimSpace(q.Get("search")))
	var filtered []T
	for _, row := range rows {
		if term == "" || spec.match(row, term) {
			filtered = append(filtered, row)
		}
	}

	if cmp, ok := spec.compare[q.Get("sortBy")]; ok {
		desc := strings.EqualFold(q.Get("sortDirection"), "desc")
		slices.SortStableFunc(filtered, func(a, b T) int {
			if desc {
				return cmp(b, a)
			}
			return cmp(a, b)
		})
	}

	start, _ := strconv.Atoi(q.Get("startFrom"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	start = min(max(start, 0), len(filtered))
	end := len(filtered)
	if size > 0 {
		end = min(start+size, len(filtered))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":     nonNil(filtered[start:end]),
		"metadata": map[string]int{"totalCount": len(filtered)},
	})
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

func contains(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func asnNumber(asn string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(asn), "AS"))
	return n
}

func (f *FakeValidator) handleRoas(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	rows := slices.Clone(f.roas)
	f.mu.Unlock()

	writePage(w, r, rows, pageSpec[FakeRoa]{
		match: func(row FakeRoa, term string) bool {
			return contains(term, row.ASN, row.Prefix, row.TrustAnchor)
		},
		compare: map[string]func(a, b FakeRoa) int{
			"asn":    func(a, b FakeRoa) int { return asnNumber(a.ASN) - asnNumber(b.ASN) },
			"prefix": func(a, b FakeRoa) int { return strings.Compare(a.Prefix, b.Prefix) },
			"length": func(a, b FakeRoa) int { return a.Length - b.Length },
			"ta":     func(a, b FakeRoa) int { return strings.Compare(a.TrustAnchor, b.TrustAnchor) },
		},
	})
}

func (f *FakeValidator) handleBgp(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/bgp/" {
		writeError(w, http.StatusNotFound, "not_found", "Not Found", r.URL.Path)
		return
	}

	f.mu.Lock()
	rows := slices.Clone(f.bgp)
	f.mu.Unlock()

	writePage(w, r, rows, pageSpec[FakeAnnouncement]{
		match: func(row FakeAnnouncement, term string) bool {
			return contains(term, row.ASN, row.Prefix, row.Validity)
		},
		compare: map[string]func(a, b FakeAnnouncement) int{
			"asn":      func(a, b FakeAnnouncement) int { return asnNumber(a.ASN) - asnNumber(b.ASN) },
			"prefix":   func(a, b FakeAnnouncement) int { return strings.Compare(a.Prefix, b.Prefix) },
			"validity": func(a, b FakeAnnouncement) int { return strings.Compare(a.Validity, b.Validity) },
		},
	})
}

func (f *FakeValidator) handleValidity(w http.ResponseWriter, r *http.Request) {
	asn, prefix := r.URL.Query().Get("asn"), r.URL.Query().Get("prefix")

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, a := range f.bgp {
		if a.ASN != asn || a.Prefix != prefix {
			continue
		}
		var validating []map[string]any
		for _, roa := range f.roas {
			if roa.Prefix == prefix {
				validating = append(validating, map[string]any{
					"origin":    roa.ASN,
					"prefix":    roa.Prefix,
					"validity":  a.Validity,
					"maxLength": roa.Length,
					"source":    roa.TrustAnchor,
					"uri":       roa.URI,
				})
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"origin":         a.ASN,
			"prefix":         a.Prefix,
			"validity":       a.Validity,
			"validatingRoas": nonNil(validating),
			"filteredRoas":   []any{},
		}})
		return
	}
	writeError(w, http.StatusNotFound, "not_found", "Not Found", "no announcement "+asn+" "+prefix)
}

func (f *FakeValidator) listFilters(store *[]FakeFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		rows := slices.Clone(*store)
		f.mu.Unlock()

		writePage(w, r, rows, pageSpec[FakeFilter]{
			match: func(row FakeFilter, term string) bool {
				return contains(term, row.ASN, row.Prefix, row.Comment)
			},
			compare: map[string]func(a, b FakeFilter) int{
				"asn":     func(a, b FakeFilter) int { return asnNumber(a.ASN) - asnNumber(b.ASN) },
				"prefix":  func(a, b FakeFilter) int { return strings.Compare(a.Prefix, b.Prefix) },
				"comment": func(a, b FakeFilter) int { return strings.Compare(a.Comment, b.Comment) },
			},
		})
	}
}

func (f *FakeValidator) addFilter(store *[]FakeFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd struct {
			Data FakeFilter `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Bad Request", err.Error())
			return
		}
		if cmd.Data.ASN == "" && cmd.Data.Prefix == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "Bad Request", "asn or prefix is required")
			return
		}

		f.mu.Lock()
		f.nextID++
		cmd.Data.ID = f.nextID
		*store = append(*store, cmd.Data)
		f.mu.Unlock()

		writeJSON(w, http.StatusCreated, map[string]any{"data": cmd.Data})
	}
}

func (f *FakeValidator) deleteFilter(store *[]FakeFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "Bad Request", "invalid id")
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		i := slices.IndexFunc(*store, func(e FakeFilter) bool { return e.ID == id })
		if i < 0 {
			writeError(w, http.StatusNotFound, "not_found", "Not Found", "no entry "+r.PathValue("id"))
			return
		}
		*store = slices.Delete(*store, i, i+1)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *FakeValidator) handleTrustAnchors(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": f.trustAnchors})
}

func (f *FakeValidator) handleTrustAnchor(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ta := range f.trustAnchors {
		if ta.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"data": ta})
			return
		}
	}
	writeError(w, http.StatusNotFound, "not_found", "Not Found", "no trust anchor "+r.PathValue("id"))
}

func (f *FakeValidator) handleStatuses(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": f.statuses})
}

// Trust anchor 2 answers in the older wrapped shape.
func (f *FakeValidator) handleChecks(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	f.mu.Lock()
	rows := slices.Clone(f.checks[id])
	f.mu.Unlock()

	if id == 2 {
		writeJSON(w, http.StatusOK, map[string]any{
			"data":     map[string]any{"validationChecks": nonNil(rows)},
			"metadata": map[string]int{"totalCount": len(rows)},
		})
		return
	}

	writePage(w, r, rows, pageSpec[FakeCheck]{
		match: func(row FakeCheck, term string) bool {
			return contains(term, row.Location, row.Status, row.FormattedMessage)
		},
		compare: map[string]func(a, b FakeCheck) int{
			"location": func(a, b FakeCheck) int { return strings.Compare(a.Location, b.Location) },
			"status":   func(a, b FakeCheck) int { return strings.Compare(a.Status, b.Status) },
		},
	})
}

func (f *FakeValidator) handleRepositories(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.URL.Query().Get("ta"), 10, 64)

	f.mu.Lock()
	rows := slices.Clone(f.repositories[id])
	f.mu.Unlock()

	writePage(w, r, rows, pageSpec[FakeRepository]{
		match: func(row FakeRepository, term string) bool {
			return contains(term, row.Location, row.Type, row.Status)
		},
		compare: map[string]func(a, b FakeRepository) int{
			"location": func(a, b FakeRepository) int { return strings.Compare(a.Location, b.Location) },
			"type":     func(a, b FakeRepository) int { return strings.Compare(a.Type, b.Type) },
			"status":   func(a, b FakeRepository) int { return strings.Compare(a.Status, b.Status) },
		},
	})
}

func (f *FakeValidator) handleRepositoryStatuses(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()

	counts := map[string]int{"downloaded": 0, "pending": 0, "failed": 0}
	for _, repo := range f.repositories[id] {
		counts[strings.ToLower(repo.Status)]++
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": counts})
}
