package scoring

// Answers maps a question id (e.g. "L1_Q3", "Q37") to a single-letter
// choice code "a".."d". Missing entries are legal everywhere.
type Answers map[string]string

// Profile is the full scoring outcome: seven independent layers.
// It is immutable once produced and serialized as an opaque payload by
// the persistence layer.
type Profile struct {
	DecisionIdentity DecisionIdentity  `json:"decision_identity"`
	ExecutionSubtype ExecutionSubtype  `json:"execution_subtype"`
	MirrorAwareness  MirrorAwareness   `json:"mirror_awareness"`
	LearningStyle    LearningStyle     `json:"learning_style"`
	NeuroPerformance map[string]string `json:"neuro_performance"`
	Mindset          Mindset           `json:"mindset"`
	MetaBeliefs      map[string]string `json:"meta_beliefs"`
}

// DecisionIdentity is layer 1: two opposite-pole counters over eight
// questions, classified by an exact-count table.
type DecisionIdentity struct {
	Type      string `json:"type"`
	Architect int    `json:"architect"`
	Alchemist int    `json:"alchemist"`
}

// ExecutionSubtype is layer 2. Path follows the layer-1 outcome and
// selects both the question-id prefix and the answer-to-subtype map.
type ExecutionSubtype struct {
	Path     string         `json:"path"` // architect | alchemist | mixed
	Counts   map[string]int `json:"counts"`
	Dominant string         `json:"dominant"`
}

type MirrorDimension struct {
	Dimension string `json:"dimension"`
	Score     int    `json:"score"`
	Label     string `json:"label"`
}

// MirrorAwareness is layer 3: six 0/1/2-scored dimensions, total out of 12.
type MirrorAwareness struct {
	Dimensions []MirrorDimension `json:"dimensions"`
	Total      int               `json:"total"`
}

// LearningStyle is layer 4: a VARK histogram over five questions.
type LearningStyle struct {
	Counts      map[string]int `json:"counts"`
	Percentages map[string]int `json:"percentages"`
	Dominant    string         `json:"dominant"`
}

// Mindset is layer 6: three binary axes, a 2x2 core-type label and a
// binary communication style.
type Mindset struct {
	Growth        string `json:"growth"`
	Risk          string `json:"risk"`
	Resilience    string `json:"resilience"`
	CoreType      string `json:"core_type"`
	Communication string `json:"communication"`
}
