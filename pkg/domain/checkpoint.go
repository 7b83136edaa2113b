package domain

import "time"

// Checkpoint is one durable snapshot of a session at a stage boundary.
// Checkpoints are appended, never mutated in place; Seq is assigned by the
// store and is strictly increasing per session.
type Checkpoint struct {
	SessionID string    `json:"session_id"`
	Seq       int       `json:"seq"`
	State     *Session  `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCheckpoint stamps a snapshot with its sequence number. The caller is
// responsible for passing a copy the session will not mutate afterwards.
func NewCheckpoint(sessionID string, seq int, state *Session) Checkpoint {
	return Checkpoint{
		SessionID: sessionID,
		Seq:       seq,
		State:     state,
		CreatedAt: time.Now().UTC(),
	}
}

// InterviewRecord is the out-of-band audit copy of a session kept in the
// record store for listing and review. It carries no engine state: losing or
// lagging a record never affects resumability.
type InterviewRecord struct {
	SessionID        string    `json:"session_id"`
	User             string    `json:"user,omitempty"`
	CandidateProfile string    `json:"candidate_profile"`
	TargetRole       string    `json:"target_role"`
	Turns            []Turn    `json:"turns"`
	Report           string    `json:"report,omitempty"`
	Finished         bool      `json:"finished"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RecordFromSession projects a session snapshot into its audit record.
func RecordFromSession(s *Session, user string) *InterviewRecord {
	cp := s.Clone()
	return &InterviewRecord{
		SessionID:        cp.ID,
		User:             user,
		CandidateProfile: cp.CandidateProfile,
		TargetRole:       cp.TargetRole,
		Turns:            cp.Turns,
		Report:           cp.Report,
		Finished:         cp.Finished,
		CreatedAt:        cp.CreatedAt,
		UpdatedAt:        cp.UpdatedAt,
	}
}
