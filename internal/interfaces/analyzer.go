package interfaces

import (
	"context"

	"github.com/chartnote/chartnote/internal/models"
)

// AnalyzeRequest carries everything needed for one chart analysis call
type AnalyzeRequest struct {
	TradeContext   string // literal trade row text embedded in the prompt
	PlanType       string // trading plan category, matched case-insensitively
	PromptOverride string // optional full prompt replacing the selected one
	Image          []byte
	MimeType       string
}

// Analyzer produces technical commentary for candlestick chart images
type Analyzer interface {
	// Analyze sends the chart plus trade context to the model and returns
	// the extracted points with token usage
	Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error)

	// AnalyzeImageOnly analyzes a chart without any trade context
	AnalyzeImageOnly(ctx context.Context, image []byte, mimeType string) (*models.AnalysisResult, error)
}
