// Loads and validates build recipes.
//
// A recipe is a YAML document that fixes every input of a provisioning run:
// the pinned base image, the native packages installed on top of it, where
// the source tree is materialized, how the distributable package is built
// and installed, what is purged afterwards, and the port and command the
// final image declares. Fields omitted from the document keep the values of
// [Default], which describe the ragbuilder image.
//
// Example recipe:
//
//	name: ragbuilder
//	base:
//	  ref: python:3.12.4-slim
//	native:
//	  manager: apt
//	  packages: [libjpeg-dev, zlib1g-dev, gcc, pkg-config]
//	source:
//	  workdir: /ragbuilder
//	package:
//	  name: ragbuilder
//	  manifest: requirements.txt
//	  output: dist
//	  artifact: "*.tar.gz"
//	runtime:
//	  port: 8085
//	  command: ragbuilder
package recipe
