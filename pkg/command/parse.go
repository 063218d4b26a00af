package command

import (
	"fmt"
	"strconv"
	"strings"
)

const commandMarker = "/"

// Parsed is the outcome of parsing raw message text. An empty Name means the
// text held no command at all and must not be dispatched.
type Parsed struct {
	Name string
	Args Args
}

// ParseError reports an argument-shape failure for a recognized command, for
// example a non-integer cipher key. It is distinct from an unknown command.
type ParseError struct {
	Command string
	Detail  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Command, e.Detail)
}

// Parse maps raw message text to a command name and a typed argument bag.
//
// Parsing is pure and deterministic: surrounding whitespace is trimmed, one
// leading marker is stripped, the first token becomes the lower-cased name,
// and the remaining tokens are shaped per command family. Commands without a
// dedicated shape fall back to positional capture.
func Parse(text string) (Parsed, error) {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, commandMarker)

	tokens := strings.Fields(trimmed)
	if len(tokens) == 0 {
		return Parsed{}, nil
	}

	name := strings.ToLower(tokens[0])
	rest := tokens[1:]

	if len(rest) == 0 {
		return Parsed{Name: name}, nil
	}

	args, err := shapeArgs(name, rest)
	if err != nil {
		return Parsed{}, err
	}

	return Parsed{Name: name, Args: args}, nil
}

// shapeArgs applies the per-family argument table. It is called only with at
// least one argument token.
func shapeArgs(name string, rest []string) (Args, error) {
	switch name {
	case "run", "exec", "run_screen":
		return ExecArgs{Command: strings.Join(rest, " ")}, nil
	case "kill":
		return KillArgs{Target: rest[0]}, nil
	case "ps", "list":
		return FilterArgs{Filter: rest[0]}, nil
	case "set_password":
		args := CredentialArgs{Secret: rest[0]}
		if len(rest) > 1 {
			key, err := strconv.Atoi(rest[1])
			if err != nil {
				return nil, &ParseError{Command: name, Detail: fmt.Sprintf("cipher key %q is not an integer", rest[1])}
			}
			args.CipherKey = key
			args.HasCipherKey = true
		}
		return args, nil
	case "log":
		return LogKeyArgs{APIKey: rest[0]}, nil
	case "cleanup":
		hours, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, &ParseError{Command: name, Detail: fmt.Sprintf("max age %q is not an integer", rest[0])}
		}
		return CleanupArgs{MaxAgeHours: hours}, nil
	default:
		return PositionalArgs{Values: rest}, nil
	}
}
