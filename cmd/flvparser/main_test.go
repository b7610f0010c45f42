package main

import (
	"bytes"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flvkit/internal/flvtest"
	"flvkit/pkg/flv"
)

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("flvparser", flag.ContinueOnError)
}

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "flvparser")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	return dir
}

func TestConfigureOptionsDefaults(t *testing.T) {
	opts, err := configureOptions(newFlagSet(), []string{"a.flv", "b.flv"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.flv", "b.flv"}, opts.Inputs)
	assert.True(t, opts.Config.Audio)
	assert.True(t, opts.Config.Video)
	assert.Equal(t, []string{"video"}, opts.Config.Retain)
	assert.Equal(t, 4, opts.Config.Workers)
}

func TestConfigureOptionsFlagsOverrideFile(t *testing.T) {
	dir := tempDir(t)
	path := filepath.Join(dir, "flvkit.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("workers: 2\nquiet: true\nretain: [audio]\n"), 0644))

	opts, err := configureOptions(newFlagSet(), []string{
		"-c", path, "-audio=false", "-retain", "video,script", "-log-level", "debug", "in.flv",
	})
	require.NoError(t, err)

	cfg := opts.Config
	assert.False(t, cfg.Audio)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.Log.Level)

	types, err := cfg.RetainTypes()
	require.NoError(t, err)
	assert.Equal(t, []flv.TagType{flv.TagTypeVideo, flv.TagTypeScript}, types)
}

func TestConfigureOptionsErrors(t *testing.T) {
	_, err := configureOptions(newFlagSet(), nil)
	assert.Error(t, err)

	_, err = configureOptions(newFlagSet(), []string{"-retain", "subtitles", "in.flv"})
	assert.Error(t, err)

	_, err = configureOptions(newFlagSet(), []string{"-workers", "0", "in.flv"})
	assert.Error(t, err)

	_, err = configureOptions(newFlagSet(), []string{"-c", "/nonexistent/flvkit.yaml", "in.flv"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := tempDir(t)
	tags := flvtest.Sample()
	input := filepath.Join(dir, "clip.flv")
	require.NoError(t, ioutil.WriteFile(input, flvtest.Build(flv.NewHeader(flv.FlagAudio|flv.FlagVideo), true, tags...), 0644))

	out := filepath.Join(dir, "out")
	opts, err := configureOptions(newFlagSet(), []string{"-dir", out, "-log-level", "panic", input})
	require.NoError(t, err)

	var report bytes.Buffer
	assert.Equal(t, 0, run(opts, &report))
	assert.Contains(t, report.String(), "[ VIDEO]     40      0     41| key frame | AVC")

	_, err = os.Stat(filepath.Join(out, "clip_audio.es"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "clip_video.flv"))
	assert.NoError(t, err)

	opts.Inputs = append(opts.Inputs, filepath.Join(dir, "missing.flv"))
	assert.Equal(t, 1, run(opts, ioutil.Discard))
}
