package protocol

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
)

// Sends a single command to the daemon listening on socket and decodes the
// response payload into result, which may be nil.
//
// An error envelope is returned as an [*ErrorResult]. Cancelling ctx closes
// the connection, which the daemon treats as a cancelled request.
func Request(ctx context.Context, socket string, cmd Command, payload, result any) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	data, err := Encode(cmd, payload)
	if err != nil {
		return err
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	env, raw, err := Decode(line)
	if err != nil {
		return err
	}

	switch env.Command {
	case CmdOK:
		if result == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		return nil
	case CmdError:
		res, err := DecodePayload[ErrorResult](raw)
		if err != nil {
			return err
		}
		return res
	default:
		return fmt.Errorf("%w: unexpected response %q", ErrProtocol, env.Command)
	}
}
