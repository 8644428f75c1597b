package models

// TokenUsage records token counts reported by the model API for one call.
// Counts the API omits default to zero.
type TokenUsage struct {
	Endpoint        string `json:"endpoint,omitempty"`
	Model           string `json:"model,omitempty"`
	PromptTokens    int    `json:"prompt_tokens"`
	CandidateTokens int    `json:"candidate_tokens"`
	TotalTokens     int    `json:"total_tokens"`
}

// AnalysisResult is the outcome of one chart analysis: the extracted
// plain-language points plus the token usage of the call that produced them.
type AnalysisResult struct {
	Analysis []string   `json:"analysis"`
	Usage    TokenUsage `json:"usage"`
}
