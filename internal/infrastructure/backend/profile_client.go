package backend

import (
	"context"
	"net/http"

	"job-scout/internal/domain/profile"
)

func (c *Client) UserDetails(ctx context.Context, token string) (profile.UserDetails, error) {
	var out envelope[profile.UserDetails]
	if err := c.do(ctx, http.MethodGet, "/api/v1/user/details", token, nil, &out); err != nil {
		return profile.UserDetails{}, err
	}
	return out.Data, nil
}

func (c *Client) ListResumes(ctx context.Context, token string) ([]profile.Resume, error) {
	var out envelope[[]profile.Resume]
	if err := c.do(ctx, http.MethodGet, "/api/v1/resume/actions/list-all-resumes", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// UniversalResumes treats 404 as "the user has none".
func (c *Client) UniversalResumes(ctx context.Context, token string) ([]profile.UniversalResume, error) {
	var out envelope[[]profile.UniversalResume]
	if err := c.do(ctx, http.MethodGet, "/api/v1/resume/actions/universal", token, nil, &out); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return out.Data, nil
}

// GetProfile loads user details and resumes with universal variants
// attached. A failing universal lookup is logged and does not fail the call.
func (c *Client) GetProfile(ctx context.Context, token string) (profile.Profile, error) {
	details, err := c.UserDetails(ctx, token)
	if err != nil {
		return profile.Profile{}, err
	}
	resumes, err := c.ListResumes(ctx, token)
	if err != nil {
		return profile.Profile{}, err
	}

	universals, err := c.UniversalResumes(ctx, token)
	if err != nil {
		c.logger.Printf("[Backend] universal resumes unavailable, continuing without them: %v", err)
		universals = nil
	}

	return profile.Profile{
		UserDetails: details,
		Resumes:     profile.AttachUniversal(resumes, universals),
	}, nil
}
