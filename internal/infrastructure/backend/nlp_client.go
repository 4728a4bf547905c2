package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrComputeScoreFailed   = errors.New("Failed to fetch job description skills.")
	ErrComputeScoreResponse = errors.New("Invalid response from compute-score API")
)

// JDSkills is what the NLP endpoint extracts from a job description.
type JDSkills struct {
	JDCount int      `json:"JDcount"`
	Skills  []string `json:"skills"`
}

type computeScoreRequest struct {
	JobDetails string `json:"jobDetails"`
}

// ComputeScore sends the job description text to the NLP endpoint and
// returns the extracted skill list.
func (c *Client) ComputeScore(ctx context.Context, token, jobDetails string) (JDSkills, error) {
	var out envelope[*JDSkills]
	err := c.do(ctx, http.MethodPost, "/api/v1/extension/ai/compute-score", token, computeScoreRequest{JobDetails: jobDetails}, &out)
	if err != nil {
		if errors.Is(err, ErrNilClient) {
			return JDSkills{}, err
		}
		return JDSkills{}, fmt.Errorf("%w: %v", ErrComputeScoreFailed, err)
	}
	if !out.Success || out.Data == nil {
		if out.Message != "" {
			return JDSkills{}, fmt.Errorf("%w: %s", ErrComputeScoreResponse, out.Message)
		}
		return JDSkills{}, ErrComputeScoreResponse
	}
	return *out.Data, nil
}
