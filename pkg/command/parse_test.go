package command

import (
	"errors"
	"testing"
)

func TestParseEmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "/", " / "} {
		parsed, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", text, err)
		}
		if parsed.Name != "" {
			t.Fatalf("Parse(%q).Name = %q, want empty", text, parsed.Name)
		}
		if parsed.Args != nil {
			t.Fatalf("Parse(%q).Args = %v, want nil", text, parsed.Args)
		}
	}
}

func TestParseLowercasesName(t *testing.T) {
	parsed, err := Parse("/RUN Echo Hello")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if parsed.Name != "run" {
		t.Fatalf("name = %q, want %q", parsed.Name, "run")
	}

	args, ok := parsed.Args.(ExecArgs)
	if !ok {
		t.Fatalf("args = %T, want ExecArgs", parsed.Args)
	}
	if args.Command != "Echo Hello" {
		t.Fatalf("command = %q, want %q (argument case preserved)", args.Command, "Echo Hello")
	}
}

func TestParseExecFamilyJoinsTrailingTokens(t *testing.T) {
	for _, name := range []string{"run", "exec", "run_screen"} {
		parsed, err := Parse("/" + name + "  ls   -la  ")
		if err != nil {
			t.Fatalf("Parse error: %v", err)
		}

		args, ok := parsed.Args.(ExecArgs)
		if !ok {
			t.Fatalf("args = %T, want ExecArgs", parsed.Args)
		}
		if args.Command != "ls -la" {
			t.Fatalf("command = %q, want %q", args.Command, "ls -la")
		}
	}
}

func TestParseNoArguments(t *testing.T) {
	parsed, err := Parse("/screenshot")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if parsed.Name != "screenshot" {
		t.Fatalf("name = %q, want %q", parsed.Name, "screenshot")
	}
	if parsed.Args != nil {
		t.Fatalf("args = %v, want nil", parsed.Args)
	}
}

func TestParseKill(t *testing.T) {
	parsed, err := Parse("/kill 4242")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	args, ok := parsed.Args.(KillArgs)
	if !ok {
		t.Fatalf("args = %T, want KillArgs", parsed.Args)
	}
	if args.Target != "4242" {
		t.Fatalf("target = %q, want %q", args.Target, "4242")
	}
}

func TestParseFilterFamily(t *testing.T) {
	parsed, err := Parse("/ps firefox")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	args, ok := parsed.Args.(FilterArgs)
	if !ok {
		t.Fatalf("args = %T, want FilterArgs", parsed.Args)
	}
	if args.Filter != "firefox" {
		t.Fatalf("filter = %q, want %q", args.Filter, "firefox")
	}

	parsed, err = Parse("/ps")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if parsed.Args != nil {
		t.Fatalf("args without filter = %v, want nil", parsed.Args)
	}
}

func TestParseSetPassword(t *testing.T) {
	parsed, err := Parse("/set_password abc99")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	args, ok := parsed.Args.(CredentialArgs)
	if !ok {
		t.Fatalf("args = %T, want CredentialArgs", parsed.Args)
	}
	if args.Secret != "abc99" || args.HasCipherKey {
		t.Fatalf("args = %+v, want secret abc99 without cipher key", args)
	}

	parsed, err = Parse("/set_password abc99 7")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	args = parsed.Args.(CredentialArgs)
	if !args.HasCipherKey || args.CipherKey != 7 {
		t.Fatalf("args = %+v, want cipher key 7", args)
	}
}

func TestParseSetPasswordBadCipherKey(t *testing.T) {
	_, err := Parse("/set_password abc99 notanumber")
	if err == nil {
		t.Fatal("expected parse error for non-integer cipher key")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %T, want *ParseError", err)
	}
	if parseErr.Command != "set_password" {
		t.Fatalf("command = %q, want %q", parseErr.Command, "set_password")
	}
}

func TestParseLogKey(t *testing.T) {
	parsed, err := Parse("/log 6b6f6465")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	args, ok := parsed.Args.(LogKeyArgs)
	if !ok {
		t.Fatalf("args = %T, want LogKeyArgs", parsed.Args)
	}
	if args.APIKey != "6b6f6465" {
		t.Fatalf("api key = %q, want %q", args.APIKey, "6b6f6465")
	}
}

func TestParseCleanup(t *testing.T) {
	parsed, err := Parse("/cleanup 48")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	args, ok := parsed.Args.(CleanupArgs)
	if !ok {
		t.Fatalf("args = %T, want CleanupArgs", parsed.Args)
	}
	if args.MaxAgeHours != 48 {
		t.Fatalf("max age = %d, want 48", args.MaxAgeHours)
	}

	if _, err := Parse("/cleanup soon"); err == nil {
		t.Fatal("expected parse error for non-integer max age")
	}
}

func TestParseGenericPositional(t *testing.T) {
	parsed, err := Parse("/frobnicate alpha beta")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	args, ok := parsed.Args.(PositionalArgs)
	if !ok {
		t.Fatalf("args = %T, want PositionalArgs", parsed.Args)
	}
	if len(args.Values) != 2 || args.Values[0] != "alpha" || args.Values[1] != "beta" {
		t.Fatalf("values = %v, want [alpha beta]", args.Values)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	first, err := Parse("/run ls -la")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	second, err := Parse("/run ls -la")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if first != second {
		t.Fatalf("Parse not deterministic: %+v vs %+v", first, second)
	}
}
