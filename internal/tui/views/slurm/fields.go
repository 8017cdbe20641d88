package slurm

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/rpkiconsole/rpkiconsole/internal/validator"
)

// NormalizeASN accepts "AS64496", "as64496" or "64496" and returns
// "AS64496".
func NormalizeASN(s string) (string, error) {
	digits := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "AS")
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil || digits == "" {
		return "", fmt.Errorf("%q is not an AS number", s)
	}
	return "AS" + strconv.FormatUint(n, 10), nil
}

// ParsePrefix parses an IPv4 or IPv6 prefix. Host bits must be zero.
func ParsePrefix(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(strings.TrimSpace(s))
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("%q is not a prefix", s)
	}
	if p.Masked() != p {
		return netip.Prefix{}, fmt.Errorf("%s has host bits set, use %s", p, p.Masked())
	}
	return p, nil
}

// ParseMaxLength checks that s is a length between the prefix length and
// the address size.
func ParseMaxLength(s string, p netip.Prefix) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if n < p.Bits() || n > p.Addr().BitLen() {
		return 0, fmt.Errorf("must be between %d and %d", p.Bits(), p.Addr().BitLen())
	}
	return n, nil
}

func validateASN(s string) error {
	_, err := NormalizeASN(s)
	return err
}

func validatePrefix(s string) error {
	_, err := ParsePrefix(s)
	return err
}

func validateNumber(s string) error {
	if _, err := strconv.Atoi(s); err != nil {
		return errors.New("must be a number")
	}
	return nil
}

// formError is a validation failure found after the fields were read.
type formError string

func (e formError) Error() string { return string(e) }

// errorText is what a failed save shows in the form. Validator rejections
// carry a reason meant for users; anything else is reported generically.
func errorText(err error) string {
	var fe formError
	if errors.As(err, &fe) {
		return string(fe)
	}
	var apiErr *validator.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Title != "" {
			return apiErr.Title
		}
	}
	return "Unable to save, please try again"
}
