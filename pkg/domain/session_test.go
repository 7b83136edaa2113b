package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("sess-1", "resume text", 2)
	require.NoError(t, s.Validate())

	require.NoError(t, s.SetProfile("backend engineer, 5y Go", "Backend Engineer"))

	// Round 0
	require.NoError(t, s.AppendTurn("Tell me about goroutine leaks."))
	require.NotNil(t, s.OpenTurn())
	require.NoError(t, s.Validate())

	require.NoError(t, s.RecordAnswer("I watch for blocked channels."))
	require.NoError(t, s.SetFeedback("Good instinct, missing pprof."))
	require.NoError(t, s.CompleteRound())
	assert.Equal(t, 1, s.Round)

	// Round 1
	require.NoError(t, s.AppendTurn("How do you handle backpressure?"))
	require.NoError(t, s.RecordAnswer("Bounded queues."))
	require.NoError(t, s.CompleteRound())

	require.NoError(t, s.MarkFinished())
	assert.True(t, s.Finished)

	s.Stage = StageFinalize
	require.NoError(t, s.SetReport("Solid candidate."))
	s.Stage = StageEnd
	require.NoError(t, s.Validate())
}

func TestProfileIsWriteOnce(t *testing.T) {
	s := NewSession("sess-1", "material", 1)
	require.NoError(t, s.SetProfile("profile", "role"))

	err := s.SetProfile("other", "role")
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "SetProfile", ie.Op)
	assert.Equal(t, "profile", s.CandidateProfile)
}

func TestAppendTurnRefusesSecondOpenTurn(t *testing.T) {
	s := NewSession("sess-1", "material", 3)
	require.NoError(t, s.AppendTurn("q1"))

	err := s.AppendTurn("q2")
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Len(t, s.Turns, 1)
}

func TestAppendTurnRefusesPastMaxRounds(t *testing.T) {
	s := NewSession("sess-1", "material", 1)
	require.NoError(t, s.AppendTurn("q1"))
	require.NoError(t, s.RecordAnswer("a1"))
	require.NoError(t, s.CompleteRound())

	// Defensive edge: the machine should never get here, but the model
	// must refuse rather than create an extra turn.
	err := s.AppendTurn("q2")
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Len(t, s.Turns, 1)
}

func TestRecordAnswerRequiresOpenTurn(t *testing.T) {
	s := NewSession("sess-1", "material", 1)
	var ie *InvariantError
	require.ErrorAs(t, s.RecordAnswer("a"), &ie)

	require.NoError(t, s.AppendTurn("q"))
	require.ErrorAs(t, s.RecordAnswer("   "), &ie)
	require.NoError(t, s.RecordAnswer("real answer"))
	require.ErrorAs(t, s.RecordAnswer("again"), &ie)
}

func TestFinishedNeverReverts(t *testing.T) {
	s := NewSession("sess-1", "material", 1)
	require.NoError(t, s.AppendTurn("q"))
	require.NoError(t, s.RecordAnswer("a"))
	require.NoError(t, s.CompleteRound())
	require.NoError(t, s.MarkFinished())
	require.True(t, s.Finished)

	// Re-running the check while still past max rounds is a no-op.
	require.NoError(t, s.MarkFinished())
	require.True(t, s.Finished)

	// Forcing the round back exposes the revert guard.
	s.Round = 0
	s.Turns = nil
	var ie *InvariantError
	require.ErrorAs(t, s.MarkFinished(), &ie)
	assert.True(t, s.Finished, "finished must not revert")
}

func TestSetReportRequiresFinished(t *testing.T) {
	s := NewSession("sess-1", "material", 1)
	var ie *InvariantError
	require.ErrorAs(t, s.SetReport("too early"), &ie)

	require.NoError(t, s.AppendTurn("q"))
	require.NoError(t, s.RecordAnswer("a"))
	require.NoError(t, s.CompleteRound())
	require.NoError(t, s.MarkFinished())

	require.NoError(t, s.SetReport("final report"))
	require.ErrorAs(t, s.SetReport("second report"), &ie)
}

func TestValidateRejectsTwoUnansweredTurns(t *testing.T) {
	s := NewSession("sess-1", "material", 3)
	require.NoError(t, s.AppendTurn("q1"))
	// Corrupt the slice directly to simulate a broken writer.
	s.Turns = append(s.Turns, Turn{Question: "q2"})

	var ie *InvariantError
	require.ErrorAs(t, s.Validate(), &ie)
}

func TestValidateRejectsReportBeforeFinished(t *testing.T) {
	s := NewSession("sess-1", "material", 2)
	s.Report = "smuggled in"
	var ie *InvariantError
	require.ErrorAs(t, s.Validate(), &ie)
}

func TestCloneIsolatesTurns(t *testing.T) {
	s := NewSession("sess-1", "material", 2)
	require.NoError(t, s.AppendTurn("q1"))

	cp := s.Clone()
	cp.Turns[0].Question = "mutated"

	assert.Equal(t, "q1", s.Turns[0].Question)
}
