package analysis

import (
	"bytes"
	"text/template"
)

// PromptInput is everything the oracle sees about one check-in.
type PromptInput struct {
	StaffName string
	Title     string
	Targets   map[string]string
	Metrics   map[string]string
	Notes     string
	Language  string
	Date      string
}

var promptTemplate = template.Must(template.New("checkin").Parse(promptTemplateText))

// RenderPrompt renders the fixed instruction contract for one check-in.
func RenderPrompt(in PromptInput) (string, error) {
	if in.Language == "" {
		in.Language = "English"
	}
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, in); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const promptTemplateText = `You are an operations coach reviewing one staff member's daily check-in.

Staff member: {{.StaffName}}{{if .Title}} ({{.Title}}){{end}}
Date: {{.Date}}

Target metrics:
{{- range $name, $target := .Targets}}
- {{$name}}: {{$target}}
{{- else}}
- (none defined)
{{- end}}

Submitted metrics:
{{- range $name, $value := .Metrics}}
- {{$name}}: {{$value}}
{{- end}}

Notes from the staff member:
{{if .Notes}}{{.Notes}}{{else}}(none){{end}}

Compare the submitted metrics with the targets and read the notes for blockers.
Reply with exactly one JSON object and nothing else, using these keys:

{
  "score": "green" | "yellow" | "red",
  "blocker": "NONE" | "EMPLOYEE" | "SYSTEM" | "EXTERNAL",
  "reason": "one sentence explaining the score",
  "message": "short encouraging message addressed to the staff member",
  "nextStep": "one concrete next step for their manager"
}

green means on or above target, yellow means slightly below or at risk, red means well below target.
blocker is NONE when nothing is blocking, EMPLOYEE for personal or skill issues, SYSTEM for internal tools or processes, EXTERNAL for customers, vendors or other outside parties.
Write reason, message and nextStep in {{.Language}}. Keep the JSON keys and enumeration values in English.`
