package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/knowledge"
	"github.com/candidhq/candid/pkg/ports"
)

// fakeLLM returns a canned response and records the prompts it saw.
type fakeLLM struct {
	response string
	err      error
	systems  []string
	prompts  []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeLLM) CompleteWithSystem(_ context.Context, system, prompt string) (string, error) {
	f.systems = append(f.systems, system)
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

type fakeSearch struct {
	snippets []string
	err      error
	queries  []string
}

func (f *fakeSearch) Search(_ context.Context, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	return f.snippets, f.err
}

func TestDefaultPromptsLoad(t *testing.T) {
	p := DefaultPrompts()
	assert.NotEmpty(t, p.Profiler.System)
	assert.NotEmpty(t, p.Interviewer.Fallback)
	assert.NotEmpty(t, p.Evaluator.Fallback)
	assert.NotEmpty(t, p.Coach.Fallback)
	assert.Len(t, p.Interviewer.RoundKinds, 4)
}

func TestKindForRoundRotatesAndSaturates(t *testing.T) {
	p := DefaultPrompts()
	assert.Equal(t, "technical depth", p.KindForRound(0))
	assert.Equal(t, "communication and collaboration", p.KindForRound(1))
	assert.Equal(t, "motivation and culture fit", p.KindForRound(2))
	assert.Equal(t, "general experience", p.KindForRound(3))
	assert.Equal(t, "general experience", p.KindForRound(9))
}

func TestProfilerExtract(t *testing.T) {
	llm := &fakeLLM{response: "Five years of backend work."}
	p := NewProfiler(llm, nil)

	ex, err := p.Extract(context.Background(), "experience...\n### Target Role\nSRE\n")
	require.NoError(t, err)
	assert.Equal(t, "Five years of backend work.", ex.Profile)
	assert.Equal(t, "SRE", ex.TargetRole)
}

func TestProfilerRejectsEmptyMaterial(t *testing.T) {
	p := NewProfiler(&fakeLLM{}, nil)
	_, err := p.Extract(context.Background(), "   ")
	assert.Error(t, err)
}

func TestInterviewerPromptMentionsAskedQuestions(t *testing.T) {
	llm := &fakeLLM{response: "What happens if a goroutine leaks?"}
	iv := NewInterviewer(llm, nil)

	s := domain.NewSession("s1", "resume", 3)
	require.NoError(t, s.SetProfile("Backend engineer", "Go developer"))
	require.NoError(t, s.AppendTurn("How do channels work?"))
	require.NoError(t, s.RecordAnswer("they pass values"))
	require.NoError(t, s.CompleteRound())

	q, err := iv.NextQuestion(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "What happens if a goroutine leaks?", q)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "How do channels work?")
	assert.Contains(t, llm.prompts[0], "communication and collaboration")
	assert.Contains(t, llm.prompts[0], "Go developer")
}

func TestEvaluatorFeedback(t *testing.T) {
	llm := &fakeLLM{response: "Strong detail, add metrics."}
	e := NewEvaluator(llm, nil)

	fb, err := e.Feedback(context.Background(), "Q", "A")
	require.NoError(t, err)
	assert.Equal(t, "Strong detail, add metrics.", fb)
	assert.NotEmpty(t, e.FallbackFeedback())
}

func TestCoachUsesKnowledgeBaseWhenGateAccepts(t *testing.T) {
	ctx := context.Background()
	ix := knowledge.NewIndex(knowledge.NewHashEngine(128))
	require.NoError(t, ix.Add(ctx, "star", "use the STAR method for behavioral questions"))

	llm := &fakeLLM{response: "Structure answers with STAR."}
	search := &fakeSearch{snippets: []string{"web result"}}
	coach := NewCoach(llm, knowledge.NewGate(ix, knowledge.WithThreshold(0.99)), search, nil, nil)

	answer, err := coach.Advise(ctx, "use the STAR method for behavioral questions")
	require.NoError(t, err)
	assert.Equal(t, "Structure answers with STAR.", answer)
	assert.Empty(t, search.queries, "no escalation when the index answers")
	assert.Contains(t, llm.prompts[0], "knowledge base")
}

func TestCoachEscalatesToSearchWhenGateRejects(t *testing.T) {
	ctx := context.Background()
	ix := knowledge.NewIndex(knowledge.NewHashEngine(128))
	require.NoError(t, ix.Add(ctx, "doc", "completely unrelated cooking notes"))

	llm := &fakeLLM{response: "Negotiate after the offer."}
	search := &fakeSearch{snippets: []string{"salary negotiation guide"}}
	// Threshold near zero forces escalation.
	coach := NewCoach(llm, knowledge.NewGate(ix, knowledge.WithThreshold(0.0001)), search, nil, nil)

	answer, err := coach.Advise(ctx, "how do I negotiate salary")
	require.NoError(t, err)
	assert.Equal(t, "Negotiate after the offer.", answer)
	require.Len(t, search.queries, 1)
	assert.Contains(t, llm.prompts[0], "salary negotiation guide")
	assert.Contains(t, llm.prompts[0], "web search")
}

func TestCoachDegradesWhenSearchFails(t *testing.T) {
	ctx := context.Background()
	ix := knowledge.NewIndex(knowledge.NewHashEngine(128))

	llm := &fakeLLM{response: "General advice."}
	search := &fakeSearch{err: assert.AnError}
	coach := NewCoach(llm, knowledge.NewGate(ix), search, nil, nil)

	answer, err := coach.Advise(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, "General advice.", answer)
	assert.NotContains(t, llm.prompts[0], "Reference material")
}

func TestReporterFallbackNeverEmpty(t *testing.T) {
	r := NewReporter(&fakeLLM{}, nil)

	s := domain.NewSession("s1", "resume", 1)
	require.NoError(t, s.SetProfile("profile", ""))
	require.NoError(t, s.AppendTurn("Q1"))
	require.NoError(t, s.RecordAnswer("A1"))
	require.NoError(t, s.CompleteRound())

	report := r.FallbackReport(s)
	assert.NotEmpty(t, report)
	assert.Contains(t, report, "Q1")
	assert.Contains(t, report, "the target role")
}

func TestReporterPromptContainsAllTurns(t *testing.T) {
	llm := &fakeLLM{response: "Overall a solid interview."}
	r := NewReporter(llm, nil)

	s := domain.NewSession("s1", "resume", 2)
	require.NoError(t, s.SetProfile("profile", "Platform Engineer"))
	for _, qa := range [][2]string{{"Q1", "A1"}, {"Q2", "A2"}} {
		require.NoError(t, s.AppendTurn(qa[0]))
		require.NoError(t, s.RecordAnswer(qa[1]))
		require.NoError(t, s.SetFeedback("good"))
		require.NoError(t, s.CompleteRound())
	}

	report, err := r.Report(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "Overall a solid interview.", report)
	assert.Contains(t, llm.prompts[0], "Q2")
	assert.Contains(t, llm.prompts[0], "A2")
	assert.Contains(t, llm.prompts[0], "Platform Engineer")
}

var _ ports.SearchProvider = (*fakeSearch)(nil)
var _ ports.LLMClient = (*fakeLLM)(nil)
