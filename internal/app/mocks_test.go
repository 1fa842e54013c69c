package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// mockRunRepository implements secondary.RunRepository for testing.
type mockRunRepository struct {
	runs   map[string]*secondary.RunRecord
	order  []string
	nextID int
}

func newMockRunRepository() *mockRunRepository {
	return &mockRunRepository{
		runs:   make(map[string]*secondary.RunRecord),
		nextID: 1,
	}
}

func (m *mockRunRepository) Create(ctx context.Context, run *secondary.RunRecord) error {
	copied := *run
	m.runs[run.ID] = &copied
	m.order = append(m.order, run.ID)
	return nil
}

func (m *mockRunRepository) GetByID(ctx context.Context, id string) (*secondary.RunRecord, error) {
	if r, ok := m.runs[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, errors.New("run not found")
}

func (m *mockRunRepository) GetLatest(ctx context.Context) (*secondary.RunRecord, error) {
	if len(m.order) == 0 {
		return nil, errors.New("no runs found")
	}
	return m.GetByID(ctx, m.order[len(m.order)-1])
}

func (m *mockRunRepository) Update(ctx context.Context, run *secondary.RunRecord) error {
	if _, ok := m.runs[run.ID]; !ok {
		return errors.New("run not found")
	}
	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

func (m *mockRunRepository) List(ctx context.Context, limit int) ([]*secondary.RunRecord, error) {
	var result []*secondary.RunRecord
	for i := len(m.order) - 1; i >= 0 && (limit <= 0 || len(result) < limit); i-- {
		copied := *m.runs[m.order[i]]
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockRunRepository) GetNextID(ctx context.Context) (string, error) {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("RUN-%03d", id), nil
}

// mockStageResultRepository implements secondary.StageResultRepository for
// testing.
type mockStageResultRepository struct {
	results map[string]*secondary.StageResultRecord // keyed by runID/stageID
	order   []string
}

func newMockStageResultRepository() *mockStageResultRepository {
	return &mockStageResultRepository{
		results: make(map[string]*secondary.StageResultRecord),
	}
}

func stageKey(runID, stageID string) string {
	return runID + "/" + stageID
}

func (m *mockStageResultRepository) Put(ctx context.Context, result *secondary.StageResultRecord) error {
	key := stageKey(result.RunID, result.StageID)
	if _, ok := m.results[key]; !ok {
		m.order = append(m.order, key)
	}
	copied := *result
	m.results[key] = &copied
	return nil
}

func (m *mockStageResultRepository) Get(ctx context.Context, runID, stageID string) (*secondary.StageResultRecord, error) {
	if r, ok := m.results[stageKey(runID, stageID)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, errors.New("stage result not found")
}

func (m *mockStageResultRepository) ListByRun(ctx context.Context, runID string) ([]*secondary.StageResultRecord, error) {
	var result []*secondary.StageResultRecord
	for _, key := range m.order {
		if r := m.results[key]; r.RunID == runID {
			copied := *r
			result = append(result, &copied)
		}
	}
	return result, nil
}

// mockLedgerRepository implements secondary.LedgerRepository for testing.
type mockLedgerRepository struct {
	entries []*secondary.LedgerEntryRecord
	nextSeq int64
}

func newMockLedgerRepository() *mockLedgerRepository {
	return &mockLedgerRepository{nextSeq: 1}
}

func (m *mockLedgerRepository) Append(ctx context.Context, entry *secondary.LedgerEntryRecord) (*secondary.LedgerEntryRecord, error) {
	copied := *entry
	copied.Seq = m.nextSeq
	m.nextSeq++
	if copied.CreatedAt == "" {
		copied.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.entries = append(m.entries, &copied)
	return &copied, nil
}

func (m *mockLedgerRepository) List(ctx context.Context, filters secondary.LedgerFilters) ([]*secondary.LedgerEntryRecord, error) {
	var result []*secondary.LedgerEntryRecord
	for _, e := range m.entries {
		if filters.Sender != "" && e.Sender != filters.Sender {
			continue
		}
		if filters.Recipient != "" && e.Recipient != filters.Recipient {
			continue
		}
		if filters.ResolutionStatus != "" && e.ResolutionStatus != filters.ResolutionStatus {
			continue
		}
		copied := *e
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockLedgerRepository) Resolve(ctx context.Context, conversationID string) (int, error) {
	updated := 0
	for _, e := range m.entries {
		if e.ConversationID == conversationID {
			e.ResolutionStatus = "resolved"
			updated++
		}
	}
	return updated, nil
}

// mockInterventionRepository implements secondary.InterventionRepository for
// testing.
type mockInterventionRepository struct {
	records []*secondary.InterventionRecord
	nextSeq int64
	failing bool
}

func newMockInterventionRepository() *mockInterventionRepository {
	return &mockInterventionRepository{nextSeq: 1}
}

func (m *mockInterventionRepository) Append(ctx context.Context, record *secondary.InterventionRecord) error {
	if m.failing {
		return errors.New("write failed")
	}
	copied := *record
	copied.Seq = m.nextSeq
	m.nextSeq++
	if copied.CreatedAt == "" {
		copied.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.records = append(m.records, &copied)
	return nil
}

func (m *mockInterventionRepository) List(ctx context.Context, runID string) ([]*secondary.InterventionRecord, error) {
	var result []*secondary.InterventionRecord
	for _, r := range m.records {
		if runID != "" && r.RunID != runID {
			continue
		}
		copied := *r
		result = append(result, &copied)
	}
	return result, nil
}

// mockExecutor implements secondary.StageExecutor for testing. Outcomes are
// keyed by stage ID; stages without an entry succeed with an empty payload.
// Every call's context bundle is retained for assertions.
type mockExecutor struct {
	configured   bool
	outcomes     map[string]*secondary.StageOutcome
	sentiment    *secondary.Sentiment
	sentimentErr error
	calls        []string
	contexts     map[string]*secondary.StageContext
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		configured: true,
		outcomes:   make(map[string]*secondary.StageOutcome),
		sentiment:  &secondary.Sentiment{Score: 60, Summary: "Engaged and constructive."},
		contexts:   make(map[string]*secondary.StageContext),
	}
}

func (m *mockExecutor) Execute(ctx context.Context, stageID string, stageCtx *secondary.StageContext) *secondary.StageOutcome {
	m.calls = append(m.calls, stageID)
	m.contexts[stageID] = stageCtx
	if outcome, ok := m.outcomes[stageID]; ok {
		return outcome
	}
	return &secondary.StageOutcome{
		Status:      "completed",
		Payload:     map[string]any{},
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func (m *mockExecutor) AssessSentiment(ctx context.Context, transcript string) (*secondary.Sentiment, error) {
	if m.sentimentErr != nil {
		return nil, m.sentimentErr
	}
	return m.sentiment, nil
}

func (m *mockExecutor) Configured() bool {
	return m.configured
}

func (m *mockExecutor) called(stageID string) bool {
	for _, c := range m.calls {
		if c == stageID {
			return true
		}
	}
	return false
}

// mockReferenceProvider implements secondary.ReferenceDataProvider for
// testing.
type mockReferenceProvider struct {
	kpis     map[string]any
	baseline map[string]any
	loadErr  error
}

func newMockReferenceProvider() *mockReferenceProvider {
	return &mockReferenceProvider{
		kpis: map[string]any{
			"saas": map[string]any{"churn_rate": "under 5%"},
		},
		baseline: map[string]any{"payback_months": 18},
	}
}

func (m *mockReferenceProvider) IndustryKPIs(ctx context.Context) (map[string]any, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.kpis, nil
}

func (m *mockReferenceProvider) IndustryKPIsFor(ctx context.Context, industry string) (map[string]any, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if set, ok := m.kpis[industry].(map[string]any); ok {
		return set, nil
	}
	return map[string]any{}, nil
}

func (m *mockReferenceProvider) BaselineMetrics(ctx context.Context) (map[string]any, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.baseline, nil
}
