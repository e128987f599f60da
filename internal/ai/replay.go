package ai

import "context"

// ReplayProvider returns a previously captured response instead of calling a
// model. It lets extraction be re-run offline against a saved reply.
type ReplayProvider struct {
	response string
}

// NewReplayProvider returns a ReplayProvider that always answers with response.
func NewReplayProvider(response string) *ReplayProvider {
	return &ReplayProvider{response: response}
}

// Complete ignores prompt and returns the captured response.
func (r *ReplayProvider) Complete(_ context.Context, _ string) (string, error) {
	return r.response, nil
}
