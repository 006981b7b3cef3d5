// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestNewCodeBlock(t *testing.T) {
	cb := NewCodeBlock("go", "fmt.Println(\"hi\")")

	if cb.Language != "go" {
		t.Errorf("Language = %q, want %q", cb.Language, "go")
	}
	if cb.Code != "fmt.Println(\"hi\")" {
		t.Errorf("Code = %q", cb.Code)
	}
	if cb.MaxWidth != 80 {
		t.Errorf("MaxWidth = %d, want default 80", cb.MaxWidth)
	}
}

func TestSetMaxWidth(t *testing.T) {
	cb := NewCodeBlock("go", "x := 1")
	cb.SetMaxWidth(120)
	if cb.MaxWidth != 120 {
		t.Errorf("MaxWidth = %d, want 120", cb.MaxWidth)
	}
}

func TestCodeBlockRender(t *testing.T) {
	cb := NewCodeBlock("go", "package main\n\nfunc main() {}")
	result := cb.Render()

	if result == "" {
		t.Fatal("Render() returned empty string")
	}
	// Line number gutter starts at 1
	if !strings.Contains(result, "1") {
		t.Error("rendered block should contain line numbers")
	}
	// Language badge
	if !strings.Contains(result, "go") {
		t.Error("rendered block should contain the language badge")
	}
	// Token text survives highlighting
	if !strings.Contains(result, "main") {
		t.Error("rendered block should contain the code text")
	}
}

func TestCodeBlockRenderNoLanguage(t *testing.T) {
	cb := NewCodeBlock("", "just some text")
	result := cb.Render()

	if result == "" {
		t.Fatal("Render() returned empty string")
	}
	if !strings.Contains(result, "just some text") {
		t.Error("rendered block should contain the code text")
	}
}

func TestCodeBlockRenderTinyWidth(t *testing.T) {
	cb := NewCodeBlock("go", "x := 1")
	cb.SetMaxWidth(5)

	// Width clamps to a usable minimum instead of panicking
	result := cb.Render()
	if result == "" {
		t.Error("Render() with tiny width should still produce output")
	}
}

func TestParseCodeBlocksPassthrough(t *testing.T) {
	text := "plain prose\nwith two lines"
	result := ParseCodeBlocks(text, 80)
	if result != text {
		t.Errorf("text without fences should pass through unchanged, got %q", result)
	}
}

func TestParseCodeBlocks(t *testing.T) {
	text := "before\n```go\nx := 1\n```\nafter"
	result := ParseCodeBlocks(text, 80)

	if result == text {
		t.Error("fenced block should have been replaced")
	}
	if !strings.Contains(result, "before") {
		t.Error("prose before the fence should survive")
	}
	if !strings.Contains(result, "after") {
		t.Error("prose after the fence should survive")
	}
	if strings.Contains(result, "```") {
		t.Error("fence markers should not appear in the output")
	}
}

func TestParseCodeBlocksUnclosed(t *testing.T) {
	// Streaming responses often end mid-fence
	text := "look:\n```python\nprint(1)"
	result := ParseCodeBlocks(text, 80)

	if !strings.Contains(result, "look:") {
		t.Error("prose before an unclosed fence should survive")
	}
	if !strings.Contains(result, "print") {
		t.Error("unclosed fence content should still render")
	}
}

func TestParseCodeBlocksEmptyUnclosed(t *testing.T) {
	text := "prose\n```"
	result := ParseCodeBlocks(text, 80)

	if !strings.Contains(result, "prose") {
		t.Error("prose should survive")
	}
	if strings.Contains(result, "```") {
		t.Error("a bare trailing fence should be dropped")
	}
}

func TestHasCodeFence(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"no code here", false},
		{"```go\nx := 1\n```", true},
		{"inline `code` only", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := HasCodeFence(tc.text); got != tc.want {
			t.Errorf("HasCodeFence(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestRenderInlineCode(t *testing.T) {
	result := RenderInlineCode("ls -la")
	if !strings.Contains(result, "ls -la") {
		t.Error("inline code should contain the code text")
	}
}

func TestParseInlineCode(t *testing.T) {
	result := ParseInlineCode("run `ls -la` now")

	if !strings.Contains(result, "ls -la") {
		t.Error("code span text should survive")
	}
	if !strings.Contains(result, "run ") || !strings.Contains(result, " now") {
		t.Error("surrounding text should survive")
	}
	if strings.Contains(result, "`") {
		t.Error("paired backticks should not appear in the output")
	}
}

func TestParseInlineCodeUnclosed(t *testing.T) {
	result := ParseInlineCode("tilde `unclosed")

	// Unclosed backtick stays literal
	if !strings.Contains(result, "`unclosed") {
		t.Errorf("unclosed backtick should stay literal, got %q", result)
	}
}

func TestParseInlineCodeEmpty(t *testing.T) {
	if got := ParseInlineCode(""); got != "" {
		t.Errorf("ParseInlineCode(\"\") = %q, want empty", got)
	}
}

func TestHighlightCodeFallback(t *testing.T) {
	// Unknown language falls back rather than erroring
	result := highlightCode("some plain text", "not-a-language")
	if result == "" {
		t.Error("highlightCode should never return empty for non-empty input")
	}
	if !strings.Contains(result, "plain") {
		t.Error("fallback output should contain the original text")
	}
}

func TestDetectLanguage(t *testing.T) {
	// Detection is best-effort; it must not panic on any input
	_ = detectLanguage("package main\n\nimport \"fmt\"\n\nfunc main() { fmt.Println(1) }")
	_ = detectLanguage("")
	_ = detectLanguage("random words without structure")
}
