package domain

// Stage identifies a node of the session state machine.
type Stage string

const (
	// StageStart is the entry point of a freshly created session.
	StageStart Stage = "start"

	// StageIntake summarizes the candidate material into a profile.
	StageIntake Stage = "intake"

	// StageAskQuestion generates the next interview question.
	StageAskQuestion Stage = "ask_question"

	// StageAwaitAnswer is the suspend point: the engine halts here and
	// returns control to the caller until an answer is supplied.
	StageAwaitAnswer Stage = "await_answer"

	// StageCheckFinish decides between another round and finalization.
	StageCheckFinish Stage = "check_finish"

	// StageFinalize searches learning resources and writes the report.
	StageFinalize Stage = "finalize"

	// StageEnd is the sink state. Sessions here are read-only.
	StageEnd Stage = "end"
)

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageStart, StageIntake, StageAskQuestion, StageAwaitAnswer,
		StageCheckFinish, StageFinalize, StageEnd:
		return true
	}
	return false
}

// Terminal reports whether the machine has nothing left to run.
func (s Stage) Terminal() bool {
	return s == StageEnd
}
