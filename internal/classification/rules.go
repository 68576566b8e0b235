package classification

import "fmt"

// OutgoingThreshold is the minimum number of outgoing indicators that files
// an email as a Round deliverable.
const OutgoingThreshold = 3

// Rule is one row of the decision table.
type Rule struct {
	Name   string
	Match  func(Signals) bool
	Decide func(Signals) Result
}

// Rules is evaluated top to bottom and the first match wins. Outgoing comes
// first so an internal deliverable that mentions "brief" is still a Round.
var Rules = []Rule{
	{
		Name:  "outgoing",
		Match: func(s Signals) bool { return s.OutgoingCount() >= OutgoingThreshold },
		Decide: func(s Signals) Result {
			return Result{
				Category:   Round,
				Confidence: High,
				Reasoning:  fmt.Sprintf("%d of 5 outgoing signals present", s.OutgoingCount()),
				Source:     SourceRules,
			}
		},
	},
	{
		Name:  "brief",
		Match: func(s Signals) bool { return s.Keywords.Brief },
		Decide: func(Signals) Result {
			return Result{
				Category:   Briefs,
				Confidence: High,
				Reasoning:  "brief keywords in subject or body",
				Source:     SourceRules,
			}
		},
	},
	{
		Name:  "feedback",
		Match: func(s Signals) bool { return s.Keywords.Feedback || !s.SenderInternal },
		Decide: func(s Signals) Result {
			if !s.Keywords.Feedback {
				return Result{
					Category:   Feedback,
					Confidence: Medium,
					Reasoning:  "sent by a client contact",
					Source:     SourceRules,
				}
			}
			return Result{
				Category:   Feedback,
				Confidence: High,
				Reasoning:  "feedback keywords in subject or body",
				Source:     SourceRules,
			}
		},
	},
}

// ClassifyByRules returns the first matching rule's decision. ok is false
// when no rule matched and the message is inconclusive.
func ClassifyByRules(s Signals) (Result, bool) {
	return classifyWith(Rules, s)
}

func classifyWith(rules []Rule, s Signals) (Result, bool) {
	for _, r := range rules {
		if r.Match(s) {
			return r.Decide(s), true
		}
	}
	return Result{}, false
}
