// Defines the contract between the provisioning pipeline and the container
// engines that back it.
//
// An [Engine] starts a build container from a base image. The returned
// [Target] accepts commands, file copies and, once provisioning is complete,
// a commit that turns the container's filesystem into a new image carrying
// the given [ImageConfig]. The containerd and Docker engines both implement
// these interfaces; tests substitute in-memory fakes.
package target
