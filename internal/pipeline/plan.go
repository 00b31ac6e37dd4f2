package pipeline

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/cruciblehq/provision/internal/recipe"
	"github.com/kballard/go-shellquote"
)

// Commands a stage would run, in order.
type PlannedStage struct {
	Name     string   // Stage name.
	Commands []string // Shell commands and runtime operations, in order.
}

// Returns the commands every stage of a run would execute, without touching
// a runtime.
//
// The recipe and the manifest found in contextDir are validated exactly as
// [Run] validates them, and failures are reported as [*StageError]. Runtime
// operations that are not shell commands are rendered as a short description
// prefixed with '#'. The artifact install names the artifact glob, since the
// actual file is only known once the build ran.
func Plan(r *recipe.Recipe, contextDir string) ([]PlannedStage, error) {
	if err := r.Validate(); err != nil {
		return nil, &StageError{Stage: stages[0].name, Index: 1, Err: classify(ErrProvision, err)}
	}
	if _, err := loadManifest(filepath.Join(contextDir, r.Package.Manifest)); err != nil {
		return nil, &StageError{Stage: stages[2].name, Index: 3, Err: err}
	}

	p := r.Package
	workdir := r.Source.Workdir

	prov := []string{"# start " + r.Base.Ref}
	if r.Base.Archive != "" {
		prov[0] = fmt.Sprintf("# import %s as %s", r.Base.Archive, r.Base.Ref)
	}
	if cmd := nativeInstall(r.Native.Manager, r.Native.Packages); cmd != "" {
		prov = append(prov, cmd)
	}

	var pkg []string
	if len(p.Toolchain) > 0 {
		pkg = append(pkg, toolchainUpgrade(p.Python, p.Toolchain))
	}
	pkg = append(pkg,
		manifestInstall(p.Python, p.Manifest),
		buildArtifact(p.Python, p.Output, p.Artifact),
		listArtifacts(p.Output),
		shellquote.Join(p.Python, "-m", "pip", "install")+" "+path.Join(r.OutputPath(), p.Artifact),
		showInstalled(p.Python, p.Name),
	)

	return []PlannedStage{
		{Name: "provision", Commands: prov},
		{Name: "materialize", Commands: []string{
			absent(workdir),
			"# mkdir " + path.Dir(workdir),
			fmt.Sprintf("# copy %s to %s", contextDir, workdir),
		}},
		{Name: "package", Commands: pkg},
		{Name: "purge", Commands: []string{
			removePaths(append([]string{workdir}, r.Purge.Extra...)),
			absent(workdir),
		}},
		{Name: "configure", Commands: []string{
			resolvable(r.Runtime.Command),
			fmt.Sprintf("# commit EXPOSE %s CMD [%s]", r.ExposedPort(), r.Runtime.Command),
		}},
	}, nil
}
