// Package server implements the provision build daemon.
//
// The daemon listens on a Unix domain socket for JSON-encoded commands.
// Each connection carries a single request-response exchange: the client
// sends a newline-delimited JSON envelope, the server dispatches the
// command, and writes the result back before closing the connection.
//
// Supported commands are build, status and shutdown. Builds are delegated
// to the pipeline package and run one at a time against the engine the
// daemon was started with. A client that disconnects cancels its build.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    Engine:     engine,
//	    EngineName: "containerd",
//	    Output:     "/var/lib/provision/images",
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
