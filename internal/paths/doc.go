// Provides platform-appropriate paths for the provisioning tool.
//
// All paths follow XDG conventions on Linux and platform-native conventions
// on macOS and Windows. The program name "provision" is used as the
// subdirectory under each base path.
package paths
