package safety

import (
	"testing"

	"fluxgallery/internal/providers/azure"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		resp       *azure.Response
		filtered   bool
		wantReason string
	}{
		{
			name:     "no entries",
			resp:     &azure.Response{},
			filtered: false,
		},
		{
			name:     "no filter metadata",
			resp:     &azure.Response{Data: []azure.ImageData{{URL: "u"}}},
			filtered: false,
		},
		{
			name: "clean metadata",
			resp: responseWith(&azure.ContentFilterResults{
				Violence: &azure.FilterResult{Filtered: false, Severity: "safe"},
			}),
			filtered: false,
		},
		{
			name: "violence filtered",
			resp: responseWith(&azure.ContentFilterResults{
				Violence: &azure.FilterResult{Filtered: true, Severity: "medium"},
			}),
			filtered:   true,
			wantReason: "content filtered due to violence (severity: medium)",
		},
		{
			name: "sexual wins over violence",
			resp: responseWith(&azure.ContentFilterResults{
				Sexual:   &azure.FilterResult{Filtered: true, Severity: "high"},
				Violence: &azure.FilterResult{Filtered: true, Severity: "low"},
			}),
			filtered:   true,
			wantReason: "content filtered due to sexual (severity: high)",
		},
		{
			name: "self harm filtered",
			resp: responseWith(&azure.ContentFilterResults{
				SelfHarm: &azure.FilterResult{Filtered: true, Severity: "high"},
			}),
			filtered:   true,
			wantReason: "content filtered due to self_harm (severity: high)",
		},
		{
			name: "profanity detected",
			resp: responseWith(&azure.ContentFilterResults{
				Profanity: &azure.FilterResult{Detected: true},
			}),
			filtered:   true,
			wantReason: "content filtered due to profanity",
		},
		{
			name: "jailbreak detected",
			resp: responseWith(&azure.ContentFilterResults{
				Jailbreak: &azure.FilterResult{Detected: true},
			}),
			filtered:   true,
			wantReason: "content filtered due to jailbreak attempt",
		},
		{
			name: "profanity and jailbreak",
			resp: responseWith(&azure.ContentFilterResults{
				Profanity: &azure.FilterResult{Detected: true},
				Jailbreak: &azure.FilterResult{Detected: true},
			}),
			filtered:   true,
			wantReason: "content filtered due to profanity and jailbreak attempt",
		},
		{
			name: "severity category wins over detection flags",
			resp: responseWith(&azure.ContentFilterResults{
				Hate:      &azure.FilterResult{Filtered: true, Severity: "low"},
				Profanity: &azure.FilterResult{Detected: true},
			}),
			filtered:   true,
			wantReason: "content filtered due to hate (severity: low)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Evaluate(tt.resp)
			if verdict.Filtered != tt.filtered {
				t.Fatalf("Filtered = %v, want %v (reason %q)", verdict.Filtered, tt.filtered, verdict.Reason)
			}
			if tt.wantReason != "" && verdict.Reason != tt.wantReason {
				t.Fatalf("Reason = %q, want %q", verdict.Reason, tt.wantReason)
			}
			if !tt.filtered && verdict.Reason != "" {
				t.Fatalf("unfiltered verdict should carry no reason, got %q", verdict.Reason)
			}
		})
	}
}

func responseWith(filters *azure.ContentFilterResults) *azure.Response {
	return &azure.Response{Data: []azure.ImageData{{URL: "u", ContentFilterResults: filters}}}
}
