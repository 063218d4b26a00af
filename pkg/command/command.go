// Package command implements the typed command parser and the handler
// registry/router that dispatches parsed commands to registered handlers.
package command

import "context"

// DataKeyImagePath marks a transient artifact in Result.Data that should be
// delivered back to the channel as an image and cleaned up afterwards.
const DataKeyImagePath = "image_path"

// RouterName is the Handler value stamped on router-authored results.
const RouterName = "router"

// Result is the uniform envelope returned by every handler invocation and by
// routing failures. Message is always populated, even on failure.
type Result struct {
	Success bool
	Message string
	Data    map[string]any
	Handler string
}

// ImagePath returns the transient artifact path carried by the result, if any.
func (r Result) ImagePath() (string, bool) {
	value, ok := r.Data[DataKeyImagePath]
	if !ok {
		return "", false
	}

	path, ok := value.(string)
	return path, ok && path != ""
}

// Origin identifies where a command came from so handlers can address replies
// or audit the caller.
type Origin struct {
	Channel    string
	ChannelID  string
	SenderID   string
	SenderName string
}

// Request is one dispatchable command: its name, typed arguments, and the
// channel metadata of the message that carried it.
type Request struct {
	Name string
	Args Args
	From Origin
}

// Handler is a pluggable unit serving one or more commands.
//
// Handle must report expected failures (a failing shell command, a missing
// capture device) through Result.Success rather than panicking; the router
// converts anything that does escape into a routing error.
type Handler interface {
	Name() string
	Commands() []string
	Handle(ctx context.Context, req Request) Result
	Help(command string) string
}

// Args carries the parsed argument bag for one command. Exactly one concrete
// variant is produced per command family; nil means the command had no
// arguments.
type Args interface {
	isArgs()
}

// ExecArgs holds the free-form trailing text of shell-execution commands
// (run, exec, run_screen).
type ExecArgs struct {
	Command string
}

// KillArgs names the target of a kill command, a PID or a process name.
type KillArgs struct {
	Target string
}

// FilterArgs holds the optional filter term of listing commands (ps, list).
type FilterArgs struct {
	Filter string
}

// CredentialArgs carries a new secret and an optional cipher key for
// set_password. HasCipherKey distinguishes "not given" from key zero.
type CredentialArgs struct {
	Secret       string
	CipherKey    int
	HasCipherKey bool
}

// LogKeyArgs carries the encoded secret installed by the log command.
type LogKeyArgs struct {
	APIKey string
}

// CleanupArgs bounds the cleanup command to artifacts older than the given
// number of hours.
type CleanupArgs struct {
	MaxAgeHours int
}

// PositionalArgs is the generic capture for commands without a dedicated
// argument shape.
type PositionalArgs struct {
	Values []string
}

func (ExecArgs) isArgs()       {}
func (KillArgs) isArgs()       {}
func (FilterArgs) isArgs()     {}
func (CredentialArgs) isArgs() {}
func (LogKeyArgs) isArgs()     {}
func (CleanupArgs) isArgs()    {}
func (PositionalArgs) isArgs() {}
