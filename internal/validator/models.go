package validator

import (
	"bytes"
	"strconv"
	"time"
)

// ASN is an autonomous system number as the validator prints it. The API
// is not consistent about quoting, so both JSON strings and numbers decode.
type ASN string

// UnmarshalJSON accepts "AS3333", "3333" or 3333.
func (a *ASN) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*a = ASN(s)
		return nil
	}
	if _, err := strconv.ParseUint(string(data), 10, 32); err != nil {
		return err
	}
	*a = ASN(data)
	return nil
}

// Roa is one validated ROA prefix.
type Roa struct {
	ASN         ASN    `json:"asn"`
	Prefix      string `json:"prefix"`
	Length      int    `json:"length"`
	TrustAnchor string `json:"trustAnchor"`
	URI         string `json:"uri"`
}

// BgpAnnouncement is one row of the BGP preview.
type BgpAnnouncement struct {
	ASN      ASN    `json:"asn"`
	Prefix   string `json:"prefix"`
	Validity string `json:"validity"`
}

// ValidatingRoa is a ROA that contributed to an announcement's validity.
type ValidatingRoa struct {
	Origin    ASN    `json:"origin"`
	Prefix    string `json:"prefix"`
	Validity  string `json:"validity"`
	MaxLength int    `json:"maxLength"`
	Source    string `json:"source"`
	URI       string `json:"uri"`
}

// BgpValidity explains the validity of one announcement.
type BgpValidity struct {
	Origin         ASN             `json:"origin"`
	Prefix         string          `json:"prefix"`
	Validity       string          `json:"validity"`
	ValidatingRoas []ValidatingRoa `json:"validatingRoas"`
	FilteredRoas   []ValidatingRoa `json:"filteredRoas"`
}

// AffectedRoa is a ROA prefix matched by an ignore filter.
type AffectedRoa struct {
	ASN       ASN    `json:"asn"`
	Prefix    string `json:"prefix"`
	MaxLength int    `json:"maxLength"`
}

// IgnoreFilter drops matching ROA prefixes from the validated output.
type IgnoreFilter struct {
	ID           int64         `json:"id"`
	ASN          ASN           `json:"asn,omitempty"`
	Prefix       string        `json:"prefix,omitempty"`
	Comment      string        `json:"comment,omitempty"`
	AffectedRoas []AffectedRoa `json:"affectedRoas,omitempty"`
}

// NewIgnoreFilter is the payload for creating an ignore filter. At least
// one of ASN and Prefix must be set.
type NewIgnoreFilter struct {
	ASN     string `json:"asn,omitempty"`
	Prefix  string `json:"prefix,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// WhitelistEntry is a locally asserted ROA prefix.
type WhitelistEntry struct {
	ID            int64  `json:"id"`
	ASN           ASN    `json:"asn"`
	Prefix        string `json:"prefix"`
	MaximumLength int    `json:"maximumLength,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

// NewWhitelistEntry is the payload for creating a whitelist entry.
type NewWhitelistEntry struct {
	ASN           string `json:"asn"`
	Prefix        string `json:"prefix"`
	MaximumLength int    `json:"maximumLength,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

// TrustAnchor is a configured trust anchor.
type TrustAnchor struct {
	ID                    int64    `json:"id"`
	Name                  string   `json:"name"`
	Locations             []string `json:"locations"`
	SubjectPublicKeyInfo  string   `json:"subjectPublicKeyInfo,omitempty"`
	RsyncPrefetchURI      string   `json:"rsyncPrefetchUri,omitempty"`
	Preconfigured         bool     `json:"preconfigured"`
	InitialValidationDone bool     `json:"initialCertificateTreeValidationRunCompleted"`
}

// TrustAnchorStatus summarises the last validation run of a trust anchor.
type TrustAnchorStatus struct {
	ID          int64  `json:"id"`
	Name        string `json:"taName"`
	Successful  int    `json:"successful"`
	Warnings    int    `json:"warnings"`
	Errors      int    `json:"errors"`
	LastUpdated string `json:"lastUpdated"`
}

// LastUpdatedTime parses LastUpdated, returning the zero time when it is
// absent or malformed.
func (s TrustAnchorStatus) LastUpdatedTime() time.Time {
	t, err := time.Parse(time.RFC3339, s.LastUpdated)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ValidationCheck is one warning or error from a validation run.
type ValidationCheck struct {
	Location         string   `json:"location"`
	Status           string   `json:"status"`
	Key              string   `json:"key"`
	Parameters       []string `json:"parameters,omitempty"`
	FormattedMessage string   `json:"formattedMessage"`
}

// Repository is an RPKI repository used by a trust anchor.
type Repository struct {
	ID           int64  `json:"id"`
	Type         string `json:"type"`
	Location     string `json:"locationURI"`
	Status       string `json:"status"`
	LastDownload string `json:"lastDownloadedAt,omitempty"`
}

// RepositoryStatuses counts a trust anchor's repositories by status.
type RepositoryStatuses struct {
	Downloaded int `json:"downloaded"`
	Pending    int `json:"pending"`
	Failed     int `json:"failed"`
}

// Total returns the number of repositories.
func (r RepositoryStatuses) Total() int {
	return r.Downloaded + r.Pending + r.Failed
}
