package core

import (
	"bytes"
	"strings"
	"testing"
)

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"", false},
		{"y", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := PromptConfirmer(strings.NewReader(tt.input), &out)
		if got := c.Confirm(DeletePrompt); got != tt.want {
			t.Errorf("input %q: Confirm = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Delete this workflow? [y/N]: " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestPromptConfirmer_ReadsOneLinePerPrompt(t *testing.T) {
	var out bytes.Buffer
	c := PromptConfirmer(strings.NewReader("n\ny\n"), &out)

	if c.Confirm("first?") {
		t.Error("first answer was n")
	}
	if !c.Confirm("second?") {
		t.Error("second answer was y")
	}
}

func TestFixedConfirmers(t *testing.T) {
	if !AlwaysConfirm.Confirm("x") {
		t.Error("AlwaysConfirm declined")
	}
	if NeverConfirm.Confirm("x") {
		t.Error("NeverConfirm approved")
	}
}
