package content

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// Problem is a malformed outbound link.
type Problem struct {
	Where string
	URL   string
	Err   error
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s: %v", p.Where, p.URL, p.Err)
}

// Lint checks that every outbound link is well formed. http(s) links must
// name a host under a known public suffix; mailto and tel links must carry
// an address. Links without an href are skipped.
func (p *Portfolio) Lint() []Problem {
	var problems []Problem
	check := func(where, raw string) {
		if raw == "" {
			return
		}
		if err := checkLink(raw); err != nil {
			problems = append(problems, Problem{Where: where, URL: raw, Err: err})
		}
	}

	for _, pr := range p.Projects {
		check(fmt.Sprintf("projects[%d].github", pr.ID), pr.GitHub)
		check(fmt.Sprintf("projects[%d].live", pr.ID), pr.Live)
	}
	for _, l := range p.Contact.Info {
		check("contact.info."+strings.ToLower(l.Label), l.Href)
	}
	for _, l := range p.Contact.Social {
		check("contact.social."+strings.ToLower(l.Label), l.Href)
	}
	return problems
}

func checkLink(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https":
		host := u.Hostname()
		if host == "" {
			return fmt.Errorf("missing host")
		}
		if _, err := publicsuffix.Domain(host); err != nil {
			return fmt.Errorf("host %q: %w", host, err)
		}
	case "mailto", "tel":
		if u.Opaque == "" {
			return fmt.Errorf("empty %s address", u.Scheme)
		}
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}
