// Package settings loads the tool configuration.
//
// Settings come from three layers, later ones winning: built-in defaults, a
// YAML configuration file, and environment variables prefixed with
// PROVISION_ (nested keys use "_", e.g. PROVISION_CONTAINERD_ADDRESS).
// Command-line flags are applied on top by the cli package.
//
// Example configuration file:
//
//	engine: docker
//	docker:
//	  host: unix:///var/run/docker.sock
//	output: /var/lib/provision/images
//	log:
//	  level: debug
//	  format: json
package settings
