package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Identifies the kind of a message.
type Command string

const (
	CmdBuild    Command = "build"    // Run the pipeline. Payload: [BuildRequest].
	CmdStatus   Command = "status"   // Report daemon status. No payload.
	CmdShutdown Command = "shutdown" // Stop the daemon. No payload.
	CmdOK       Command = "ok"       // Successful response.
	CmdError    Command = "error"    // Failed response. Payload: [ErrorResult].
)

var ErrProtocol = errors.New("protocol error")

// Message wrapper carrying a command and its raw payload.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Asks the daemon to run the pipeline over a build context on its host.
type BuildRequest struct {
	Context string `json:"context"`          // Build context directory.
	Recipe  string `json:"recipe,omitempty"` // Recipe file. Defaults to provision.yaml in the context.
	Output  string `json:"output,omitempty"` // Output directory. Defaults to the daemon's setting.
	Tag     string `json:"tag,omitempty"`    // Image reference. Defaults to "<name>:latest".
}

// Describes the running daemon.
type StatusResult struct {
	Running bool   `json:"running"` // Always true for a responding daemon.
	Version string `json:"version"` // Daemon version string.
	Engine  string `json:"engine"`  // Runtime engine in use.
	Pid     int    `json:"pid"`     // Daemon process ID.
	Uptime  string `json:"uptime"`  // Time since the daemon started.
	Builds  int    `json:"builds"`  // Successful builds since start.
}

// Carries a failure back to the client.
type ErrorResult struct {
	Message string `json:"message"`         // Error message, including tool diagnostics.
	Stage   string `json:"stage,omitempty"` // Failed stage, when a build failed in the pipeline.
}

// Formats the error with its stage when one is set.
func (e *ErrorResult) Error() string {
	if e.Stage == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (stage %s)", e.Message, e.Stage)
}

// Encodes a command and payload as a single JSON line, without the trailing
// newline. A nil payload is omitted.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		env.Payload = raw
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return data, nil
}

// Decodes a JSON line into its envelope and raw payload.
func Decode(line []byte) (*Envelope, json.RawMessage, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil, fmt.Errorf("%w: empty message", ErrProtocol)
	}

	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	if env.Command == "" {
		return nil, nil, fmt.Errorf("%w: missing command", ErrProtocol)
	}

	return &env, env.Payload, nil
}

// Decodes a raw payload into a value of type T. Unknown fields are rejected.
func DecodePayload[T any](payload json.RawMessage) (*T, error) {
	var v T
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: missing payload", ErrProtocol)
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return &v, nil
}
