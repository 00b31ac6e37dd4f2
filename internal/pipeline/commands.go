package pipeline

import (
	"path"
	"slices"
	"strings"

	"github.com/cruciblehq/provision/internal/recipe"
	"github.com/kballard/go-shellquote"
)

// Environment applied to every pip invocation. Caches would leak host state
// into the image and the version check reaches the network.
var pipEnv = map[string]string{
	"PIP_NO_CACHE_DIR":              "1",
	"PIP_DISABLE_PIP_VERSION_CHECK": "1",
}

// Environment applied to apt invocations.
var aptEnv = map[string]string{
	"DEBIAN_FRONTEND": "noninteractive",
}

// Returns the single command that installs packages with the given manager
// and drops the package index afterwards, or an empty string when there is
// nothing to install. Packages are deduplicated and sorted so equal sets
// always yield the same command.
func nativeInstall(manager string, packages []string) string {
	pkgs := slices.Clone(packages)
	slices.Sort(pkgs)
	pkgs = slices.Compact(pkgs)
	if len(pkgs) == 0 {
		return ""
	}

	switch manager {
	case recipe.ManagerApk:
		return shellquote.Join(append([]string{"apk", "add", "--no-cache"}, pkgs...)...)
	default:
		return strings.Join([]string{
			"apt-get update",
			shellquote.Join(append([]string{"apt-get", "install", "-y", "--no-install-recommends"}, pkgs...)...),
			"rm -rf /var/lib/apt/lists/*",
		}, " && ")
	}
}

// Returns the environment for the given native package manager.
func nativeEnv(manager string) map[string]string {
	if manager == recipe.ManagerApk {
		return nil
	}
	return aptEnv
}

// Returns the command that upgrades the packaging toolchain.
func toolchainUpgrade(python string, tools []string) string {
	return shellquote.Join(append([]string{python, "-m", "pip", "install", "--upgrade"}, tools...)...)
}

// Returns the command that installs every requirement of the manifest.
func manifestInstall(python, manifest string) string {
	return shellquote.Join(python, "-m", "pip", "install", "-r", manifest)
}

// Returns the command that builds the distributable package into output.
// A wheel is built when the artifact pattern names one, a source
// distribution otherwise.
func buildArtifact(python, output, artifact string) string {
	kind := "--sdist"
	if strings.HasSuffix(artifact, ".whl") {
		kind = "--wheel"
	}
	return shellquote.Join(python, "-m", "build", kind, "--outdir", output, ".")
}

// Returns the command that lists the entries of dir, one per line.
func listArtifacts(dir string) string {
	return shellquote.Join("ls", "-1A", dir)
}

// Returns the entries of an "ls -1A" listing that match pattern, sorted.
func matchArtifacts(listing, pattern string) []string {
	var matches []string
	for line := range strings.Lines(listing) {
		name := strings.TrimRight(line, "\r\n")
		if name == "" {
			continue
		}
		if ok, _ := path.Match(pattern, name); ok {
			matches = append(matches, name)
		}
	}
	slices.Sort(matches)
	return matches
}

// Returns the command that installs the built artifact.
func artifactInstall(python, artifact string) string {
	return shellquote.Join(python, "-m", "pip", "install", artifact)
}

// Returns the command that prints the installed package's metadata and
// file listing.
func showInstalled(python, name string) string {
	return shellquote.Join(python, "-m", "pip", "show", "-f", name)
}

// Returns the command that removes paths recursively.
func removePaths(paths []string) string {
	return shellquote.Join(append([]string{"rm", "-rf"}, paths...)...)
}

// Returns the command that succeeds only when p does not exist.
func absent(p string) string {
	return "test ! -e " + shellquote.Join(p)
}

// Returns the command that succeeds only when name resolves through PATH.
func resolvable(name string) string {
	return "command -v " + shellquote.Join(name)
}
