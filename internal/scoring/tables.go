package scoring

// Question tables for all seven layers. These mirror the published quiz:
// changing them changes the product, so they live in one place.

const layerQuestions = 8

// Layer 1: exact-count classification. Any count pair not present here
// falls through to "Blurred".
var identityTable = map[[2]int]string{
	{8, 0}: "Strong Architect",
	{7, 1}: "Medium Architect",
	{6, 2}: "Weak Architect",
	{0, 8}: "Strong Alchemist",
	{1, 7}: "Medium Alchemist",
	{2, 6}: "Weak Alchemist",
}

// Layer 2: per-path question prefix and answer-letter -> subtype map.
type subtypePath struct {
	prefix   string
	subtypes map[string]string
}

var architectPath = subtypePath{
	prefix: "L2A_Q",
	subtypes: map[string]string{
		"a": "systemizer",
		"b": "strategist",
		"c": "executor",
		"d": "refiner",
	},
}

var alchemistPath = subtypePath{
	prefix: "L2B_Q",
	subtypes: map[string]string{
		"a": "visionary",
		"b": "catalyst",
		"c": "improviser",
		"d": "connector",
	},
}

var mixedPath = subtypePath{
	prefix: "L2M_Q",
	subtypes: map[string]string{
		"a": "integrator",
		"b": "balancer",
		"c": "adapter",
		"d": "explorer",
	},
}

// Layer 3: six mirror-awareness dimensions. The label index is the
// answer letter offset ("a"=0), same as the score.
type mirrorQuestion struct {
	id        string
	dimension string
	labels    [3]string
}

var mirrorQuestions = []mirrorQuestion{
	{"L3_Q1", "Self-Perception", [3]string{"Hidden", "Emerging", "Clear"}},
	{"L3_Q2", "Emotional Mirror", [3]string{"Hidden", "Emerging", "Clear"}},
	{"L3_Q3", "Feedback Reception", [3]string{"Deflecting", "Selective", "Open"}},
	{"L3_Q4", "Blind-Spot Awareness", [3]string{"Unseen", "Glimpsed", "Mapped"}},
	{"L3_Q5", "Pattern Recognition", [3]string{"Reactive", "Noticing", "Anticipating"}},
	{"L3_Q6", "Inner Dialogue", [3]string{"Critical", "Mixed", "Coaching"}},
}

// MirrorMax is the mirror-awareness ceiling: six dimensions, two points
// each. Report rendering uses it for the "out of" scale.
const MirrorMax = 12

// Layer 4: VARK modalities in display order. The order doubles as the
// tie-break for the dominant modality.
var varkModalities = []string{"visual", "auditory", "reading", "kinesthetic"}

var varkQuestions = []string{"L4_Q1", "L4_Q2", "L4_Q3", "L4_Q4", "L4_Q5"}

var varkByAnswer = map[string]string{
	"a": "visual",
	"b": "auditory",
	"c": "reading",
	"d": "kinesthetic",
}

// Layer 5: raw answer codes stored verbatim under stable names.
var neuroQuestions = []struct{ id, name string }{
	{"L5_Q1", "focus_rhythm"},
	{"L5_Q2", "energy_peak"},
	{"L5_Q3", "recovery_mode"},
	{"L5_Q4", "stimulation_threshold"},
	{"L5_Q5", "context_switching"},
	{"L5_Q6", "pressure_response"},
}

// Layer 6: binary axes ("a" -> left label) and the 2x2 core-type table
// keyed by the concatenated Q37+Q38 answers. Unmapped combinations
// (including a missing answer) produce an empty core type.
var mindsetAxes = []struct{ id, pos, neg string }{
	{"Q34", "Growth-Oriented", "Fixed-Leaning"},
	{"Q35", "Risk-Embracing", "Risk-Averse"},
	{"Q36", "Resilient", "Guarded"},
}

var coreTypeTable = map[string]string{
	"aa": "Confident & Steady",
	"ab": "Confident & Adaptive",
	"ba": "Fast-Moving & Focused",
	"bb": "Fast-Moving & Adaptive",
}

var communicationStyles = [2]string{"Direct & Structured", "Expressive & Intuitive"}

// Layer 7: meta-belief dimensions, answer letter indexes the label list.
var beliefQuestions = []struct {
	id        string
	dimension string
	labels    [3]string
}{
	{"L7_Q1", "success", [3]string{"Inherited", "Earned", "Created"}},
	{"L7_Q2", "failure", [3]string{"Final", "Costly", "Instructive"}},
	{"L7_Q3", "money", [3]string{"Scarce", "Neutral", "Abundant"}},
	{"L7_Q4", "talent", [3]string{"Fixed", "Developed", "Unlimited"}},
	{"L7_Q5", "luck", [3]string{"Random", "Positioned", "Manufactured"}},
	{"L7_Q6", "time", [3]string{"Against Me", "Neutral", "On My Side"}},
}
