package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/datapack/errors"
)

const counter = `namespace: demo
vars:
  i: score
functions:
  - name: main
    tags: ["minecraft:load"]
    body:
      - set: {var: i, value: 0}
      - while:
          cond: i < 3
          body:
            - add: {var: i, value: 1}
      - print: ["i is ", i]
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--no-color"))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.Nil(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func memPackFs(t *testing.T) afero.Fs {
	t.Helper()
	saved := packFs
	packFs = afero.NewMemMapFs()
	t.Cleanup(func() { packFs = saved })
	return packFs
}

func TestBuild(t *testing.T) {
	fs := memPackFs(t)
	stdout, _, err := execute(t, "build", writeSource(t, counter),
		"-o", "/pack", "--pack-format", "48", "--function-dir", "function")
	require.Nil(t, err)
	require.Contains(t, stdout, "to /pack")

	ok, err := afero.Exists(fs, "/pack/data/demo/function/main/main.mcfunction")
	require.Nil(t, err)
	require.True(t, ok)

	data, err := afero.ReadFile(fs, "/pack/pack.mcmeta")
	require.Nil(t, err)
	require.Contains(t, string(data), `"pack_format": 48`)

	data, err = afero.ReadFile(fs, "/pack/data/minecraft/tags/function/load.json")
	require.Nil(t, err)
	require.Contains(t, string(data), "demo:main/main")
}

func TestBuildCompileError(t *testing.T) {
	memPackFs(t)
	_, _, err := execute(t, "build", writeSource(t, `namespace: demo
functions:
  - name: main
    body:
      - call: missing
`), "-o", "/pack")
	var ce *errors.CompileError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, errors.E2007, ce.Code)
	require.Equal(t, 5, ce.Line)
}

func TestList(t *testing.T) {
	path := writeSource(t, counter)
	stdout, _, err := execute(t, "list", path)
	require.Nil(t, err)
	require.Contains(t, stdout, "# demo:main/main\n")
	require.Contains(t, stdout, "scoreboard players set demo.i dp_std.main 0\n")

	stdout, _, err = execute(t, "list", path, "-o", "json")
	require.Nil(t, err)
	var out listed
	require.Nil(t, json.Unmarshal([]byte(stdout), &out))
	var paths []string
	for _, fn := range out.Functions {
		paths = append(paths, fn.Path)
	}
	require.Contains(t, paths, "demo:main/main")
	require.Contains(t, out.Tags["minecraft:load"], "demo:main/main")

	_, _, err = execute(t, "list", path, "-o", "yaml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown output format")
}

func TestRun(t *testing.T) {
	stdout, _, err := execute(t, "run", writeSource(t, counter))
	require.Nil(t, err)
	require.Contains(t, stdout, "i is 3\n")
	require.Contains(t, stdout, "dp_std.main demo.i = 3\n")

	stdout, _, err = execute(t, "run", "--scores=false", "--code", `namespace: demo
functions:
  - name: hello
    body:
      - print: "hello"
`, "hello")
	require.Nil(t, err)
	require.Equal(t, "hello\n", stdout)
}

func TestRunCommandLimit(t *testing.T) {
	_, _, err := execute(t, "run", "--max-commands", "10", writeSource(t, `namespace: demo
vars:
  i: score
functions:
  - name: main
    body:
      - set: {var: i, value: 0}
      - while:
          cond: i < 1000
          body:
            - add: {var: i, value: 1}
`), "main")
	require.Error(t, err)
}

func TestObjectiveFromEnvironment(t *testing.T) {
	t.Setenv("DPC_OBJECTIVE", "vars")
	stdout, _, err := execute(t, "run", writeSource(t, counter))
	require.Nil(t, err)
	require.Contains(t, stdout, "dp_std.vars demo.i = 3\n")
}

func TestConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "dpc.yaml")
	require.Nil(t, os.WriteFile(cfg, []byte("library: lib\nobjective: cfg\n"), 0o644))
	stdout, _, err := execute(t, "run", "--config", cfg, writeSource(t, counter))
	require.Nil(t, err)
	require.Contains(t, stdout, "lib.cfg demo.i = 3\n")
}

func TestInputSources(t *testing.T) {
	_, _, err := execute(t, "list", writeSource(t, counter), "--code", counter)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple input sources")

	_, _, err = execute(t, "list")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no input")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.Nil(t, err)
	require.Equal(t, "dev\n", stdout)

	stdout, _, err = execute(t, "version", "-o", "json")
	require.Nil(t, err)
	var info map[string]string
	require.Nil(t, json.Unmarshal([]byte(stdout), &info))
	require.Equal(t, "dev", info["version"])
	require.Equal(t, "unknown", info["commit"])
}
