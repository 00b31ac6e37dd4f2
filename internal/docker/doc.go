// Package docker runs build containers through the Docker Engine API.
//
// It implements [target.Engine] and [target.Target] on top of the Docker
// client, as an alternative to the containerd-backed runtime package for
// hosts that only expose a Docker daemon. Base images are pulled by
// reference or loaded from an archive, build containers run "sleep infinity"
// so commands can be executed into them, and Commit records the runtime
// configuration as Dockerfile-style changes on the committed image.
//
// Example usage:
//
//	eng, err := docker.New("")
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	ctr, err := eng.Start(ctx, target.Base{Ref: "python:3.12.4-slim"}, "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "python3 --version", nil, "")
package docker
