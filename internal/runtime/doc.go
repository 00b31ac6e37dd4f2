// Package runtime manages build containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and implements
// [target.Engine]. Base images are either pulled from a registry or imported
// from an OCI archive, unpacked for the target platform, and used to create
// containers with overlay snapshots.
//
// Each [Container] wraps a running containerd task and implements
// [target.Target]. Commands can be executed inside the container, files can
// be copied in as tar streams, and the final filesystem state can be
// committed as a new image and exported as an OCI archive. When the container
// is no longer needed it should be destroyed to release its snapshot and
// task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "provision")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.Start(ctx, target.Base{Ref: "docker.io/library/python:3.12.4-slim"}, "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "echo hello", nil, "")
//	if err != nil {
//	    return err
//	}
//
//	img, err := ctr.Commit(ctx, "ragbuilder:local", target.ImageConfig{Cmd: []string{"ragbuilder"}}, "output")
//	if err != nil {
//	    return err
//	}
package runtime
