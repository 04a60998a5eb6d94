package render

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"

	"github.com/mindprintlabs/mindprint-backend/internal/profile"
	"github.com/mindprintlabs/mindprint-backend/internal/scoring"
)

// BuildHTML renders the report markup fed to the browser. Split out
// from the PDF step so the report content is testable without Chrome.
func BuildHTML(rec profile.Record) (string, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, reportData(rec)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

type kv struct{ K, V string }

type report struct {
	Name      string
	Email     string
	Identity  string
	Subtype   string
	Mirror    []kv
	MirrorSum string
	Learning  []kv
	Dominant  string
	Neuro     []kv
	Mindset   []kv
	Beliefs   []kv
}

func reportData(rec profile.Record) report {
	p := rec.Profile
	r := report{
		Name:      rec.Name,
		Email:     rec.Email,
		Identity:  p.DecisionIdentity.Type,
		Subtype:   p.ExecutionSubtype.Dominant,
		MirrorSum: fmt.Sprintf("%d / %d", p.MirrorAwareness.Total, scoring.MirrorMax),
		Dominant:  p.LearningStyle.Dominant,
		Mindset: []kv{
			{"Growth", p.Mindset.Growth},
			{"Risk", p.Mindset.Risk},
			{"Resilience", p.Mindset.Resilience},
			{"Core Type", p.Mindset.CoreType},
			{"Communication", p.Mindset.Communication},
		},
	}
	for _, d := range p.MirrorAwareness.Dimensions {
		r.Mirror = append(r.Mirror, kv{d.Dimension, fmt.Sprintf("%s (%d)", d.Label, d.Score)})
	}
	for _, m := range sortedKeys(p.LearningStyle.Percentages) {
		r.Learning = append(r.Learning, kv{m, fmt.Sprintf("%d%%", p.LearningStyle.Percentages[m])})
	}
	for _, k := range sortedKeys(p.NeuroPerformance) {
		r.Neuro = append(r.Neuro, kv{k, p.NeuroPerformance[k]})
	}
	for _, k := range sortedKeys(p.MetaBeliefs) {
		r.Beliefs = append(r.Beliefs, kv{k, p.MetaBeliefs[k]})
	}
	return r
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>MindPrint Report</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
h1 { font-size: 24px; } h2 { font-size: 16px; margin-top: 28px; }
table { border-collapse: collapse; width: 100%; }
td { padding: 4px 8px; border-bottom: 1px solid #eee; }
td:first-child { color: #666; width: 40%; }
.headline { font-size: 20px; font-weight: bold; }
</style>
</head>
<body>
<h1>MindPrint Profile</h1>
<p>{{.Name}} &lt;{{.Email}}&gt;</p>

<h2>Decision Identity</h2>
<p class="headline">{{.Identity}}</p>

<h2>Execution Subtype</h2>
<p class="headline">{{.Subtype}}</p>

<h2>Mirror Awareness ({{.MirrorSum}})</h2>
<table>{{range .Mirror}}<tr><td>{{.K}}</td><td>{{.V}}</td></tr>{{end}}</table>

<h2>Learning Style (dominant: {{.Dominant}})</h2>
<table>{{range .Learning}}<tr><td>{{.K}}</td><td>{{.V}}</td></tr>{{end}}</table>

<h2>Neuro Performance</h2>
<table>{{range .Neuro}}<tr><td>{{.K}}</td><td>{{.V}}</td></tr>{{end}}</table>

<h2>Mindset &amp; Personality</h2>
<table>{{range .Mindset}}<tr><td>{{.K}}</td><td>{{.V}}</td></tr>{{end}}</table>

<h2>Meta-Beliefs</h2>
<table>{{range .Beliefs}}<tr><td>{{.K}}</td><td>{{.V}}</td></tr>{{end}}</table>
</body>
</html>`))
