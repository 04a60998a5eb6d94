// Package scoring converts a flat answer map into the seven-layer
// MindPrint profile. Score is a pure, total function: malformed or
// missing answers only ever produce neutral or omitted values, never an
// error.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Score computes the full profile for one submission. Safe for
// concurrent use; no state is shared between calls.
func Score(answers Answers) Profile {
	identity := scoreIdentity(answers)
	return Profile{
		DecisionIdentity: identity,
		ExecutionSubtype: scoreSubtype(answers, identity.Type),
		MirrorAwareness:  scoreMirror(answers),
		LearningStyle:    scoreLearningStyle(answers),
		NeuroPerformance: scoreNeuro(answers),
		Mindset:          scoreMindset(answers),
		MetaBeliefs:      scoreBeliefs(answers),
	}
}

func scoreIdentity(answers Answers) DecisionIdentity {
	var architect, alchemist int
	for i := 1; i <= layerQuestions; i++ {
		switch answers[fmt.Sprintf("L1_Q%d", i)] {
		case "a":
			architect++
		case "b":
			alchemist++
		}
	}
	typ, ok := identityTable[[2]int{architect, alchemist}]
	if !ok {
		typ = "Blurred"
	}
	return DecisionIdentity{Type: typ, Architect: architect, Alchemist: alchemist}
}

// scoreSubtype is the only cross-layer computation: the layer-1 type
// selects which question block and subtype vocabulary apply.
func scoreSubtype(answers Answers, identityType string) ExecutionSubtype {
	var path subtypePath
	var name string
	switch {
	case strings.Contains(identityType, "Architect"):
		path, name = architectPath, "architect"
	case strings.Contains(identityType, "Alchemist"):
		path, name = alchemistPath, "alchemist"
	default:
		path, name = mixedPath, "mixed"
	}

	counts := make(map[string]int, len(path.subtypes))
	for _, st := range path.subtypes {
		counts[st] = 0
	}
	for i := 1; i <= layerQuestions; i++ {
		if st, ok := path.subtypes[answers[fmt.Sprintf("%s%d", path.prefix, i)]]; ok {
			counts[st]++
		}
	}
	return ExecutionSubtype{Path: name, Counts: counts, Dominant: capitalize(dominantKey(counts))}
}

// dominantKey returns the highest-count key, ties broken lexicographically
// so the outcome never depends on map iteration order.
func dominantKey(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := ""
	for _, k := range keys {
		if best == "" || counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

func scoreMirror(answers Answers) MirrorAwareness {
	out := MirrorAwareness{Dimensions: make([]MirrorDimension, 0, len(mirrorQuestions))}
	for _, q := range mirrorQuestions {
		d := MirrorDimension{Dimension: q.dimension, Label: "Unanswered"}
		if idx, ok := answerIndex(answers[q.id], 3); ok {
			d.Score = idx
			d.Label = q.labels[idx]
		}
		out.Dimensions = append(out.Dimensions, d)
		out.Total += d.Score
	}
	return out
}

func scoreLearningStyle(answers Answers) LearningStyle {
	counts := make(map[string]int, len(varkModalities))
	for _, m := range varkModalities {
		counts[m] = 0
	}
	total := 0
	for _, id := range varkQuestions {
		if m, ok := varkByAnswer[answers[id]]; ok {
			counts[m]++
			total++
		}
	}

	percentages := make(map[string]int, len(counts))
	dominant := "visual"
	for _, m := range varkModalities {
		if total > 0 {
			percentages[m] = int(math.Round(float64(counts[m]) * 100 / float64(total)))
		} else {
			percentages[m] = 0
		}
		if counts[m] > counts[dominant] {
			dominant = m
		}
	}
	return LearningStyle{Counts: counts, Percentages: percentages, Dominant: dominant}
}

func scoreNeuro(answers Answers) map[string]string {
	out := make(map[string]string, len(neuroQuestions))
	for _, q := range neuroQuestions {
		if v, ok := answers[q.id]; ok && v != "" {
			out[q.name] = v
		}
	}
	return out
}

func scoreMindset(answers Answers) Mindset {
	axes := make([]string, len(mindsetAxes))
	for i, ax := range mindsetAxes {
		if answers[ax.id] == "a" {
			axes[i] = ax.pos
		} else {
			axes[i] = ax.neg
		}
	}

	comm := communicationStyles[1]
	if answers["Q39"] == "a" {
		comm = communicationStyles[0]
	}

	return Mindset{
		Growth:        axes[0],
		Risk:          axes[1],
		Resilience:    axes[2],
		CoreType:      coreTypeTable[answers["Q37"]+answers["Q38"]],
		Communication: comm,
	}
}

func scoreBeliefs(answers Answers) map[string]string {
	out := make(map[string]string, len(beliefQuestions))
	for _, q := range beliefQuestions {
		if idx, ok := answerIndex(answers[q.id], len(q.labels)); ok {
			out[q.dimension] = q.labels[idx]
		}
	}
	return out
}

// answerIndex converts a choice code to a zero-based offset from "a",
// rejecting anything outside [0, n).
func answerIndex(code string, n int) (int, bool) {
	if len(code) != 1 {
		return 0, false
	}
	idx := int(code[0] - 'a')
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
