// Package pipeline provisions a runtime image in five ordered stages.
//
// A run starts a build container from a pinned base image and carries it
// through the stages below. The first failing stage stops the run; no image
// is committed unless every stage succeeds.
//
//  1. provision: install native packages and drop the package index.
//  2. materialize: copy the build context into a fresh source workdir.
//  3. package: validate the manifest, install dependencies, build the
//     distributable artifact and install it.
//  4. purge: remove the source tree and the extra purge paths.
//  5. configure: check the command resolves, then commit and export.
//
// Container operations go through the [target.Engine] and [target.Target]
// interfaces, so the same pipeline drives containerd and the Docker Engine.
// Step state (environment, working directory, shell) accumulates across the
// stages of a run.
//
// Example usage:
//
//	result, err := pipeline.Run(ctx, engine, pipeline.Options{
//	    Recipe:  rcp,
//	    Context: ".",
//	    Output:  "dist/image",
//	})
//	if err != nil {
//	    var stageErr *pipeline.StageError
//	    if errors.As(err, &stageErr) {
//	        fmt.Println("failed at", stageErr.Stage)
//	    }
//	    return err
//	}
//	fmt.Println(result.Image, result.Digest)
package pipeline
