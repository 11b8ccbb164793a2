package safety

import (
	"fmt"
	"strings"

	"fluxgallery/internal/providers/azure"
)

// Verdict is the outcome of inspecting one provider response. A filtered
// variation is dropped, never retried; this only fails the overall request
// when every variation is dropped.
type Verdict struct {
	Filtered bool
	Reason   string
}

type categoryCheck struct {
	name   string
	result func(*azure.ContentFilterResults) *azure.FilterResult
}

// Severity categories are checked in a fixed order; the first filtered one
// wins the reason message over the profanity/jailbreak flags.
var categories = []categoryCheck{
	{"sexual", func(f *azure.ContentFilterResults) *azure.FilterResult { return f.Sexual }},
	{"violence", func(f *azure.ContentFilterResults) *azure.FilterResult { return f.Violence }},
	{"hate", func(f *azure.ContentFilterResults) *azure.FilterResult { return f.Hate }},
	{"self_harm", func(f *azure.ContentFilterResults) *azure.FilterResult { return f.SelfHarm }},
}

// Evaluate inspects the safety metadata on the first response entry. Absent
// metadata is treated as non-blocking: the provider may omit it entirely for
// benign content.
func Evaluate(resp *azure.Response) Verdict {
	entry := resp.First()
	if entry == nil || entry.ContentFilterResults == nil {
		return Verdict{}
	}
	filters := entry.ContentFilterResults

	for _, c := range categories {
		if result := c.result(filters); result != nil && result.Filtered {
			return Verdict{
				Filtered: true,
				Reason:   fmt.Sprintf("content filtered due to %s (severity: %s)", c.name, result.Severity),
			}
		}
	}

	var detected []string
	if filters.Profanity != nil && filters.Profanity.Detected {
		detected = append(detected, "profanity")
	}
	if filters.Jailbreak != nil && filters.Jailbreak.Detected {
		detected = append(detected, "jailbreak attempt")
	}
	if len(detected) > 0 {
		return Verdict{
			Filtered: true,
			Reason:   "content filtered due to " + strings.Join(detected, " and "),
		}
	}

	return Verdict{}
}
