package classification_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/MGhunch/dot-file/internal/classification"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtract(t *testing.T) {
	policy := classification.DefaultPolicy()

	tests := []struct {
		name string
		msg  classification.Message
		want classification.Signals
	}{
		{
			name: "all outgoing signals",
			msg: classification.Message{
				JobNumber:   "SKY 045",
				SenderEmail: "mike@Hunch.co.nz",
				Subject:     "Banner",
				Body:        "<p>Here's the latest for you</p>",
				Attachments: []string{"SKY045 Banner v2.PDF"},
				Recipients:  []string{"mike@hunch.co.nz", "sarah@sky.co.nz"},
			},
			want: classification.Signals{
				SenderInternal:     true,
				RecipientExternal:  true,
				Keywords:           classification.KeywordHits{Outgoing: true},
				FilenameHasJob:     true,
				Deliverable:        true,
				ExternalRecipients: []string{"sarah@sky.co.nz"},
			},
		},
		{
			name: "client feedback",
			msg: classification.Message{
				JobNumber:   "SKY 045",
				SenderEmail: "Sarah <sarah@sky.co.nz>",
				Subject:     "Feedback on banners",
				Attachments: []string{"notes.txt"},
				Recipients:  []string{"mike@hunch.co.nz"},
			},
			want: classification.Signals{
				Keywords: classification.KeywordHits{Feedback: true},
			},
		},
		{
			name: "brief keyword in html body",
			msg: classification.Message{
				JobNumber:   "TEL 101",
				SenderEmail: "ops@tel.com",
				Body:        "<div>Please find the <b>Scope</b> document</div>",
			},
			want: classification.Signals{
				Keywords: classification.KeywordHits{Brief: true},
			},
		},
		{
			name: "job number with extra whitespace",
			msg: classification.Message{
				JobNumber:   "SKY045",
				SenderEmail: "mike@hunch.co.nz",
				Attachments: []string{"sky 045 - logo.png"},
			},
			want: classification.Signals{
				SenderInternal: true,
				FilenameHasJob: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classification.Extract(tt.msg, policy)
			if got.SenderInternal != tt.want.SenderInternal ||
				got.RecipientExternal != tt.want.RecipientExternal ||
				got.Keywords != tt.want.Keywords ||
				got.FilenameHasJob != tt.want.FilenameHasJob ||
				got.Deliverable != tt.want.Deliverable ||
				!slices.Equal(got.ExternalRecipients, tt.want.ExternalRecipients) {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOutgoingCountScenarioB(t *testing.T) {
	s := classification.Extract(classification.Message{
		JobNumber:   "SKY 045",
		SenderEmail: "mike@hunch.co.nz",
		Body:        "Hi Sarah, here's the latest.",
		Attachments: []string{"SKY 045 Banner.pdf"},
		Recipients:  []string{"sarah@sky.co.nz"},
	}, classification.DefaultPolicy())

	if n := s.OutgoingCount(); n != 5 {
		t.Fatalf("OutgoingCount() = %d, want 5", n)
	}
	r, ok := classification.ClassifyByRules(s)
	if !ok || r.Category != classification.Round || r.Confidence != classification.High {
		t.Errorf("ClassifyByRules() = %+v, %v", r, ok)
	}
}

// Every combination of the five outgoing signals, crossed with the other
// keyword sets: three or more always files as Round.
func TestOutgoingThresholdDominates(t *testing.T) {
	for mask := range 32 {
		for _, other := range []classification.KeywordHits{{}, {Brief: true}, {Feedback: true}, {Brief: true, Feedback: true}} {
			s := classification.Signals{
				SenderInternal:    mask&1 != 0,
				RecipientExternal: mask&2 != 0,
				FilenameHasJob:    mask&4 != 0,
				Deliverable:       mask&8 != 0,
				Keywords: classification.KeywordHits{
					Outgoing: mask&16 != 0,
					Brief:    other.Brief,
					Feedback: other.Feedback,
				},
			}

			r, ok := classification.ClassifyByRules(s)
			if s.OutgoingCount() >= classification.OutgoingThreshold {
				if !ok || r.Category != classification.Round {
					t.Errorf("mask %05b %+v: got %+v, want Round", mask, other, r)
				}
				continue
			}
			if ok && r.Category == classification.Round {
				t.Errorf("mask %05b: Round below threshold", mask)
			}
		}
	}
}

func TestRuleOrder(t *testing.T) {
	tests := []struct {
		name       string
		signals    classification.Signals
		category   classification.Category
		confidence classification.Confidence
		ok         bool
	}{
		{
			name:       "brief beats feedback",
			signals:    classification.Signals{Keywords: classification.KeywordHits{Brief: true, Feedback: true}},
			category:   classification.Briefs,
			confidence: classification.High,
			ok:         true,
		},
		{
			name:       "client sender alone",
			signals:    classification.Signals{},
			category:   classification.Feedback,
			confidence: classification.Medium,
			ok:         true,
		},
		{
			name:       "feedback keyword from internal sender",
			signals:    classification.Signals{SenderInternal: true, Keywords: classification.KeywordHits{Feedback: true}},
			category:   classification.Feedback,
			confidence: classification.High,
			ok:         true,
		},
		{
			name:    "internal with two outgoing signals is inconclusive",
			signals: classification.Signals{SenderInternal: true, Deliverable: true},
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := classification.ClassifyByRules(tt.signals)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if r.Category != tt.category || r.Confidence != tt.confidence || r.Source != classification.SourceRules {
				t.Errorf("got %+v", r)
			}
		})
	}
}

func TestOverride(t *testing.T) {
	tests := []struct {
		route, folderType string
		want              classification.Category
		ok                bool
	}{
		{"work-to-client", "", classification.Round, true},
		{"New-Job", "", classification.Briefs, true},
		{"update", "", classification.Other, true},
		{"feedback", "briefs", classification.Briefs, true},
		{"", "ROUND", classification.Round, true},
		{"unknown", "nonsense", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		r, ok := classification.Override(tt.route, tt.folderType)
		if ok != tt.ok || r.Category != tt.want {
			t.Errorf("Override(%q, %q) = %+v, %v", tt.route, tt.folderType, r, ok)
		}
		if ok && (r.Confidence != classification.High || r.Source != classification.SourceRules) {
			t.Errorf("override result should be high confidence rules: %+v", r)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		category   classification.Category
		confidence classification.Confidence
		wantErr    bool
	}{
		{"plain json", `{"folder":"Briefs","is_outgoing":false,"confidence":"high","reasoning":"kickoff"}`, classification.Briefs, classification.High, false},
		{"fenced", "Sure:\n```json\n{\"folder\":\"feedback\",\"confidence\":\"Medium\"}\n```", classification.Feedback, classification.Medium, false},
		{"prose wrapped", `I think {"folder":"Other","confidence":"low"} fits`, classification.Other, classification.Low, false},
		{"outgoing flag wins", `{"folder":"Other","is_outgoing":true,"confidence":"high"}`, classification.Round, classification.High, false},
		{"confidence clamped", `{"folder":"Briefs","confidence":"certain"}`, classification.Briefs, classification.Low, false},
		{"unknown folder", `{"folder":"Invoices","confidence":"high"}`, "", "", true},
		{"not json", "no idea", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := classification.Normalize(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, classification.ErrClassification) {
					t.Errorf("err = %v, want ErrClassification", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if r.Category != tt.category || r.Confidence != tt.confidence || r.Source != classification.SourceModel {
				t.Errorf("got %+v", r)
			}
		})
	}
}

type inferFunc func(ctx context.Context, prompt string) (string, error)

func (f inferFunc) Infer(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestModelClassifierTimeout(t *testing.T) {
	blocking := inferFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	c := classification.NewModelClassifier(blocking, 20*time.Millisecond, discard())

	start := time.Now()
	r := c.Classify(context.Background(), classification.Message{}, classification.Signals{})
	if time.Since(start) > time.Second {
		t.Fatal("classifier did not honour timeout")
	}
	if !r.Degraded() {
		t.Errorf("got %+v, want Unavailable", r)
	}
	if r.Reasoning != "classification unavailable" || r.Confidence != classification.Low || r.Category != classification.Other {
		t.Errorf("unexpected fallback %+v", r)
	}
}

func TestModelClassifierAlwaysKnownCategory(t *testing.T) {
	outputs := []string{
		`{"folder":"Round"}`,
		`{"folder":"  briefs "}`,
		`{"folder":"Drafts"}`,
		`{"folder": 7}`,
		`[]`,
		"```json\n{broken\n```",
		"",
	}

	for _, out := range outputs {
		c := classification.NewModelClassifier(inferFunc(func(context.Context, string) (string, error) {
			return out, nil
		}), time.Second, discard())

		r := c.Classify(context.Background(), classification.Message{}, classification.Signals{})
		if _, ok := classification.ParseCategory(string(r.Category)); !ok {
			t.Errorf("output %q produced category %q", out, r.Category)
		}
	}
}

type countingFallback struct{ calls int }

func (f *countingFallback) Classify(ctx context.Context, m classification.Message, s classification.Signals) classification.Result {
	f.calls++
	return classification.Unavailable()
}

func TestClassifierUsesFallbackOnlyWhenInconclusive(t *testing.T) {
	fb := &countingFallback{}
	c := classification.New(classification.DefaultPolicy(), fb, discard())
	ctx := context.Background()

	r, _ := c.Classify(ctx, classification.Message{SenderEmail: "sarah@sky.co.nz", Subject: "feedback"})
	if r.Category != classification.Feedback || fb.calls != 0 {
		t.Errorf("rules should decide client feedback: %+v calls=%d", r, fb.calls)
	}

	r, _ = c.Classify(ctx, classification.Message{SenderEmail: "mike@hunch.co.nz", Subject: "hello"})
	if r.Category != classification.Other || fb.calls != 1 {
		t.Errorf("fallback should decide inconclusive: %+v calls=%d", r, fb.calls)
	}

	r, _ = c.Classify(ctx, classification.Message{SenderEmail: "mike@hunch.co.nz", Route: "work-to-client"})
	if r.Category != classification.Round || fb.calls != 1 {
		t.Errorf("override should skip fallback: %+v calls=%d", r, fb.calls)
	}
}

func TestPromptContext(t *testing.T) {
	msg := classification.Message{
		SenderEmail: "mike@hunch.co.nz",
		Subject:     "Quick one",
		Body:        strings.Repeat("x", 3000) + "TAIL",
		Attachments: []string{"a.png"},
		Recipients:  []string{"mike@hunch.co.nz"},
	}
	s := classification.Extract(msg, classification.DefaultPolicy())
	p := classification.Prompt(msg, s)

	for _, want := range []string{"Sender: mike@hunch.co.nz (agency)", "External recipients: None", "Attachments: a.png", `"is_outgoing"`} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p, "TAIL") {
		t.Error("body excerpt not truncated")
	}
}

func TestResultJSON(t *testing.T) {
	r := classification.Result{Category: classification.Round, Confidence: classification.High, Reasoning: "r", Source: classification.SourceRules}.WithRound(3)

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	json.Unmarshal(data, &got)
	if got["folder"] != "Round" || got["is_outgoing"] != true || got["round"] != float64(3) || got["confidence"] != "high" {
		t.Errorf("unexpected JSON %s", data)
	}
}

func TestWithRoundPanicsOffRound(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	classification.Result{Category: classification.Feedback}.WithRound(1)
}
