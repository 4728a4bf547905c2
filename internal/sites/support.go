package sites

import (
	"net/url"
	"strings"
)

func (r *Registry) IsSupportedAutofillSite(u string) bool {
	return containsAny(u, r.support.Autofill)
}

func (r *Registry) IsSupportedAutoapplySite(u string) bool {
	return containsAny(u, r.support.Autoapply)
}

// IsSiteAlwaysVisible reports sites where the floating entry point is never hidden.
func (r *Registry) IsSiteAlwaysVisible(u string) bool {
	return containsAny(u, r.support.AlwaysVisible)
}

func (r *Registry) CoverLetterSelector(u string) (string, bool) {
	for _, rule := range r.support.CoverLetter {
		if containsAny(u, rule.Match) {
			return rule.Selector, true
		}
	}
	return "", false
}

// CurrentJobIDFromURL reads the currentJobId query parameter used by LinkedIn
// search result pages.
func CurrentJobIDFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return u.Query().Get("currentJobId"), nil
}
