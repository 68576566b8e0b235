package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testConfig = `
[docstore]
backend = "memory"

[agent]
name = "dot-file"

[agent.provider]
name = "ollama"
base_url = "http://localhost:11434"

[agent.model]
name = "llama3.2"
`

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(testConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyRulesOnly(t *testing.T) {
	tests := []struct {
		name     string
		request  string
		folder   string
		source   string
		outgoing bool
	}{
		{
			name: "outgoing deliverable",
			request: `{
				"jobNumber": "SKY 045",
				"senderEmail": "maddy@hunch.co.nz",
				"subjectLine": "SKY 045 banners attached",
				"attachmentNames": ["SKY 045 Banners R2.pdf"],
				"allRecipients": ["sarah@sky.co.nz"]
			}`,
			folder:   "Round",
			source:   "rules",
			outgoing: true,
		},
		{
			name: "client feedback",
			request: `{
				"jobNumber": "SKY 045",
				"senderEmail": "sarah@sky.co.nz",
				"subjectLine": "Re: banners"
			}`,
			folder: "Feedback",
			source: "rules",
		},
		{
			name: "inconclusive without model",
			request: `{
				"jobNumber": "SKY 045",
				"senderEmail": "maddy@hunch.co.nz",
				"subjectLine": "Quick one"
			}`,
			folder: "Other",
			source: "model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, tt.request, "classify", "--rules-only", "--json", "-")
			if err != nil {
				t.Fatalf("classify: %v", err)
			}

			var got struct {
				Classification struct {
					Folder     string `json:"folder"`
					IsOutgoing bool   `json:"is_outgoing"`
					Source     string `json:"source"`
				} `json:"classification"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("decode output %q: %v", out, err)
			}
			if got.Classification.Folder != tt.folder {
				t.Errorf("folder = %q, want %q", got.Classification.Folder, tt.folder)
			}
			if got.Classification.Source != tt.source {
				t.Errorf("source = %q, want %q", got.Classification.Source, tt.source)
			}
			if got.Classification.IsOutgoing != tt.outgoing {
				t.Errorf("is_outgoing = %v, want %v", got.Classification.IsOutgoing, tt.outgoing)
			}
		})
	}
}

func TestClassifyTable(t *testing.T) {
	out, err := runCommand(t, `{"jobNumber": "SKY 045", "senderEmail": "sarah@sky.co.nz"}`, "classify", "--rules-only")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	for _, want := range []string{"outgoing signals", "folder:", "Feedback"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestClassifyRejectsBadJSON(t *testing.T) {
	if _, err := runCommand(t, "not json", "classify", "--rules-only"); err == nil {
		t.Error("expected decode error")
	}
}
