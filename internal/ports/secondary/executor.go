package secondary

// StageExecutor defines the secondary port for the generative-text backend
// that runs each reasoning stage. The backend is opaque: it accepts a stage
// identifier and a context bundle and returns structured output when its
// response parses as JSON, raw text otherwise. Failures are returned as data
// on the outcome, never as an error the orchestrator must unwrap.
//
// Callers must give every call a bounded deadline via ctx; once a call is
// issued there is no cancellation mid-flight beyond that deadline.

import "context"

// StageExecutor executes pipeline stages against the backend.
type StageExecutor interface {
	// Execute runs one stage with the given context bundle.
	Execute(ctx context.Context, stageID string, stageCtx *StageContext) *StageOutcome

	// AssessSentiment runs the independent sentiment assessment over the raw
	// document. It does not depend on any stage output.
	AssessSentiment(ctx context.Context, transcript string) (*Sentiment, error)

	// Configured reports whether the backend is reachable in principle
	// (credentials and endpoint present). The orchestrator fails fast when
	// the backend is entirely unconfigured.
	Configured() bool
}

// StageContext is the bundle of inputs a stage receives.
type StageContext struct {
	ClientContext    string
	Transcript       string
	DetectedIndustry string
	IndustryKPIs     map[string]any
	BaselineMetrics  map[string]any
	PreviousOutputs  map[string]any
	Sentiment        *Sentiment
}

// StageOutcome is the result of one executor call.
type StageOutcome struct {
	Status      string // 'completed' or 'error'
	Payload     map[string]any
	Raw         string
	Err         string
	CompletedAt string
}

// Completed reports whether the call produced usable output.
func (o *StageOutcome) Completed() bool {
	return o != nil && o.Status == "completed"
}

// Sentiment is the independent emotional-tone assessment of the document.
type Sentiment struct {
	Score   int    `json:"sentiment_score"`
	Summary string `json:"sentiment_analysis"`
}
