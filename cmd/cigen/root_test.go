package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-cigen/internal/prompt"
	"github.com/goliatone/go-cigen/pkg/travis"
)

type fakePrompt struct {
	answer bool
	calls  int
}

func (f *fakePrompt) Confirm(_ context.Context, _ prompt.ConfirmConfig) (bool, error) {
	f.calls++
	return f.answer, nil
}

func execute(t *testing.T, p prompt.PromptDriver, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(deps{Prompt: p})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_WritesDefaultOutput(t *testing.T) {
	dir := t.TempDir()

	if _, stderr, err := execute(t, nil, "--dir", dir); err != nil {
		t.Fatalf("execute: %v\n%s", err, stderr)
	}

	data, err := os.ReadFile(filepath.Join(dir, travis.DefaultFilename))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Count(string(data), travis.Sentinel) != 2 {
		t.Fatal("expected generated descriptor with sentinel markers")
	}
	if !strings.Contains(string(data), "TESTS=24 BLD") || strings.Contains(string(data), "TESTS=25 BLD") {
		t.Fatal("expected builders 1 through 24")
	}
}

func TestRoot_StdoutDoesNotWrite(t *testing.T) {
	dir := t.TempDir()

	stdout, stderr, err := execute(t, nil, "--dir", dir, "--first", "1", "--last", "2", "--stdout")
	if err != nil {
		t.Fatalf("execute: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(stdout, "# This file is part of the dune-gdt project") {
		t.Fatalf("unexpected stdout prefix %q", firstLine(stdout))
	}
	if strings.Contains(stdout, "TESTS=3 BLD") {
		t.Fatal("expected only builders 1 and 2")
	}
	if _, err := os.Stat(filepath.Join(dir, travis.DefaultFilename)); err == nil {
		t.Fatal("--stdout wrote the output file")
	}
}

func TestRoot_Check(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, nil, "--dir", dir, "--check")
	if !errors.Is(err, travis.ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if !strings.Contains(stdout, "+sudo: required") {
		t.Fatalf("expected diff on stdout, got %q", stdout)
	}

	if _, _, err := execute(t, nil, "--dir", dir); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := execute(t, nil, "--dir", dir, "--check"); err != nil {
		t.Fatalf("expected fresh output to pass, got %v", err)
	}
}

func TestRoot_InteractiveDecline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, travis.DefaultFilename)
	if err := os.WriteFile(path, []byte("keep: me\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p := &fakePrompt{answer: false}
	if _, stderr, err := execute(t, p, "--dir", dir, "-i"); err != nil {
		t.Fatalf("execute: %v\n%s", err, stderr)
	}
	if p.calls != 1 {
		t.Fatalf("expected one prompt, got %d", p.calls)
	}
	if got, _ := os.ReadFile(path); string(got) != "keep: me\n" {
		t.Fatalf("declined overwrite changed the file: %q", got)
	}

	p.answer = true
	if _, _, err := execute(t, p, "--dir", dir, "-i"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got, _ := os.ReadFile(path); !strings.Contains(string(got), travis.Sentinel) {
		t.Fatal("accepted overwrite did not write the descriptor")
	}

	if _, _, err := execute(t, p, "--dir", dir, "-i"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if p.calls != 2 {
		t.Fatalf("expected no prompt for unchanged output, got %d calls", p.calls)
	}
}

func TestRoot_ConfigFileAndFlagOverride(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "mini.tpl")
	if err := os.WriteFile(tpl, []byte("project: {{ project }}\nbuilders: [{% for c in builders %}{{c}}{% if not forloop.Last %}, {% endif %}{% endfor %}]\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfgPath := filepath.Join(dir, "cigen.yaml")
	cfg := "filename: ci.yml\nfirst: 2\nlast: 9\ntemplate: mini.tpl\nvars:\n  project: dune-gdt\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, stderr, err := execute(t, nil, "--config", cfgPath, "--dir", dir, "--last", "4"); err != nil {
		t.Fatalf("execute: %v\n%s", err, stderr)
	}

	got, err := os.ReadFile(filepath.Join(dir, "ci.yml"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "project: dune-gdt\nbuilders: [2, 3, 4]" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRoot_Errors(t *testing.T) {
	if _, _, err := execute(t, nil, "--log-level", "loud", "--stdout"); err == nil {
		t.Fatal("expected invalid log level to fail")
	}
	if _, _, err := execute(t, nil, "unexpected-arg"); err == nil {
		t.Fatal("expected positional arguments to be rejected")
	}
	missing := filepath.Join(t.TempDir(), "missing", "dir")
	if _, _, err := execute(t, nil, "--dir", missing); !errors.Is(err, travis.ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
	if _, _, err := execute(t, nil, "--template", filepath.Join(t.TempDir(), "none.tpl"), "--stdout"); err == nil {
		t.Fatal("expected missing template to fail")
	}
}

func TestRoot_RejectsOversizedRange(t *testing.T) {
	_, stderr, err := execute(t, nil, "--dir", t.TempDir(), "--last", "9223372036854775807", "--log-format", "json")
	if !errors.Is(err, travis.ErrRangeTooLarge) {
		t.Fatalf("expected ErrRangeTooLarge, got %v", err)
	}
	if !strings.Contains(stderr, `"msg":"generation failed"`) || !strings.Contains(stderr, "builder range too large") {
		t.Fatalf("expected the failure on the log, got %q", stderr)
	}
}

func TestRunMain_ReportsErrorsOnce(t *testing.T) {
	for _, tc := range []struct {
		name       string
		args       []string
		wantPrefix bool
	}{
		{name: "unknown flag", args: []string{"--nope"}, wantPrefix: true},
		{name: "bad log level", args: []string{"--log-level", "loud", "--stdout"}, wantPrefix: true},
		{name: "logged failure", args: []string{"--dir", filepath.Join(t.TempDir(), "missing"), "--log-format", "logfmt"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			cmd := newRootCmd(deps{})
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&stderr)
			cmd.SetArgs(tc.args)

			if code := runMain(cmd, &stderr); code != 1 {
				t.Fatalf("expected exit code 1, got %d", code)
			}
			out := stderr.String()
			if got := strings.Count(out, "Error:"); tc.wantPrefix && got != 1 {
				t.Fatalf("expected one Error: line, got %q", out)
			}
			if !tc.wantPrefix {
				if strings.Contains(out, "Error:") {
					t.Fatalf("logged failure printed twice: %q", out)
				}
				if !strings.Contains(out, "msg=\"generation failed\"") {
					t.Fatalf("expected the failure on the log, got %q", out)
				}
			}
		})
	}

	cmd := newRootCmd(deps{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--dir", t.TempDir(), "--stdout"})
	if code := runMain(cmd, &bytes.Buffer{}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
