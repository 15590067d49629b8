package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"zone_name=a.com.", "subdomain=host.", "ip=1.2.3.4", "empty="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"zone_name": "a.com.", "subdomain": "host.", "ip": "1.2.3.4", "empty": ""}
	for k, v := range want {
		got, ok := params[k]
		if !ok || got != v {
			t.Errorf("param %q: got %q (present=%v), want %q", k, got, ok, v)
		}
	}
}

func TestParseParams_Invalid(t *testing.T) {
	for _, arg := range []string{"novalue", "=x"} {
		if _, err := parseParams([]string{arg}); err == nil {
			t.Errorf("expected error for %q", arg)
		}
	}
}

func TestCLIEventReport(t *testing.T) {
	var out, errOut bytes.Buffer
	ev := &cliEvent{name: "add-zone"}
	ev.SetResults(map[string]string{"output": "201:{}"})
	if err := ev.report(&out, &errOut); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out.String()) != `{"output":"201:{}"}` {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	ev = &cliEvent{name: "add-zone"}
	ev.Fail("Failed to add zone: boom")
	if err := ev.report(&out, &errOut); err == nil {
		t.Fatal("expected error for failed action")
	}
	if !strings.Contains(errOut.String(), "Failed to add zone: boom") {
		t.Errorf("expected failure on stderr, got %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", out.String())
	}
}

func TestRunAction_MissingName(t *testing.T) {
	var out, errOut bytes.Buffer
	if err := runAction(nil, &out, &errOut); err == nil {
		t.Fatal("expected error for missing action name")
	}
}
