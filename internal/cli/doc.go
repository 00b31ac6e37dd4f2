// Parses flags, loads settings and configures logging for provision.
//
// The tool accepts the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	    --config    Configuration file.
//
// and the commands build, plan, serve, status, stop and version. Flags
// override settings, which override build-time defaults set via linker
// flags. After parsing, the global logger is reconfigured to reflect the
// final level and format before the command runs.
package cli
