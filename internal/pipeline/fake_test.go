package pipeline

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/cruciblehq/provision/internal/target"
	"github.com/opencontainers/go-digest"
)

// Package listing printed by the fake "pip show -f".
const fakeShow = "Name: ragbuilder\nVersion: 0.1.0\nLocation: /usr/local/lib/python3.12/site-packages\nFiles:\n  ../../../bin/ragbuilder\n  ragbuilder/__init__.py\n"

type fakeEngine struct {
	target   *fakeTarget
	startErr error
	started  []string
	base     target.Base
	platform string
}

func (e *fakeEngine) Start(_ context.Context, base target.Base, id, platform string) (target.Target, error) {
	if e.startErr != nil {
		return nil, e.startErr
	}
	e.started = append(e.started, id)
	e.base = base
	e.platform = platform
	return e.target, nil
}

func (e *fakeEngine) Close() error { return nil }

type execCall struct {
	Command string
	Workdir string
	Env     []string
}

type commitCall struct {
	Ref    string
	Config target.ImageConfig
	Output string
}

// Simulates a container filesystem closely enough to observe what each
// stage leaves behind.
type fakeTarget struct {
	files     map[string]bool               // Paths present in the container.
	artifacts []string                      // Files the build command writes into the output directory.
	noCommand bool                          // Whether installing the artifact leaves the command off PATH.
	fail      map[string]*target.ExecResult // Results for commands with the given prefix.
	execs     []execCall
	installed bool
	committed *commitCall
	destroyed bool
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		files:     map[string]bool{"/root/.cache/pip": true, "/root/.cache/pip/http": true},
		artifacts: []string{"ragbuilder-0.1.0.tar.gz"},
		fail:      make(map[string]*target.ExecResult),
	}
}

func (f *fakeTarget) Exec(_ context.Context, _, command string, env []string, workdir string) (*target.ExecResult, error) {
	f.execs = append(f.execs, execCall{Command: command, Workdir: workdir, Env: env})

	for prefix, res := range f.fail {
		if strings.HasPrefix(command, prefix) {
			return res, nil
		}
	}

	fields := strings.Fields(command)
	resolve := func(p string) string {
		if path.IsAbs(p) {
			return p
		}
		return path.Join(workdir, p)
	}

	switch {
	case strings.HasPrefix(command, "test ! -e "):
		if f.exists(fields[len(fields)-1]) {
			return &target.ExecResult{ExitCode: 1}, nil
		}
	case strings.HasPrefix(command, "rm -rf "):
		for _, p := range fields[2:] {
			f.remove(resolve(p))
		}
	case strings.Contains(command, " -m build "):
		out := resolve(fields[len(fields)-2])
		f.files[out] = true
		for _, name := range f.artifacts {
			f.files[path.Join(out, name)] = true
		}
	case strings.HasPrefix(command, "ls -1A "):
		dir := resolve(fields[2])
		if !f.files[dir] {
			return &target.ExecResult{ExitCode: 2, Stderr: "ls: cannot access '" + fields[2] + "': No such file or directory\n"}, nil
		}
		var b strings.Builder
		for _, name := range f.children(dir) {
			b.WriteString(name + "\n")
		}
		return &target.ExecResult{Stdout: b.String()}, nil
	case strings.Contains(command, " -m pip install /"):
		f.installed = true
		if !f.noCommand {
			f.files["/usr/local/bin/ragbuilder"] = true
		}
	case strings.Contains(command, " -m pip show -f "):
		if !f.installed {
			return &target.ExecResult{ExitCode: 1, Stderr: "WARNING: Package(s) not found: ragbuilder\n"}, nil
		}
		return &target.ExecResult{Stdout: fakeShow}, nil
	case strings.HasPrefix(command, "command -v "):
		if !f.files["/usr/local/bin/"+fields[2]] {
			return &target.ExecResult{ExitCode: 1}, nil
		}
		return &target.ExecResult{Stdout: "/usr/local/bin/" + fields[2] + "\n"}, nil
	}

	return &target.ExecResult{}, nil
}

func (f *fakeTarget) MkdirAll(_ context.Context, p string) error {
	for ; p != "/"; p = path.Dir(p) {
		f.files[p] = true
	}
	return nil
}

func (f *fakeTarget) CopyTo(_ context.Context, r io.Reader, destDir string) error {
	if !f.files[destDir] && destDir != "/" {
		return errors.New("tar: " + destDir + ": Cannot open: No such file or directory")
	}
	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		f.files[path.Join(destDir, strings.TrimSuffix(h.Name, "/"))] = true
	}
}

func (f *fakeTarget) Commit(_ context.Context, ref string, cfg target.ImageConfig, output string) (*target.Image, error) {
	f.committed = &commitCall{Ref: ref, Config: cfg, Output: output}
	img := &target.Image{Ref: ref, Digest: digest.FromString(ref)}
	if output != "" {
		img.Path = path.Join(output, "image.tar")
	}
	return img, nil
}

func (f *fakeTarget) Destroy(context.Context) {
	f.destroyed = true
}

func (f *fakeTarget) exists(p string) bool {
	return f.files[p]
}

func (f *fakeTarget) remove(p string) {
	for file := range f.files {
		if file == p || strings.HasPrefix(file, p+"/") {
			delete(f.files, file)
		}
	}
}

func (f *fakeTarget) children(dir string) []string {
	var names []string
	for file := range f.files {
		if path.Dir(file) == dir {
			names = append(names, path.Base(file))
		}
	}
	slices.Sort(names)
	return names
}

// Returns the executed commands in order.
func (f *fakeTarget) commands() []string {
	cmds := make([]string, len(f.execs))
	for i, e := range f.execs {
		cmds[i] = e.Command
	}
	return cmds
}

// Returns whether any executed command starts with prefix.
func (f *fakeTarget) ran(prefix string) bool {
	return slices.ContainsFunc(f.execs, func(e execCall) bool {
		return strings.HasPrefix(e.Command, prefix)
	})
}
