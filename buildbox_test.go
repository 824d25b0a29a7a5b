package bbox

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	bbox_arch "github.com/infra-whizz/build-box/arch"
	bbox_lib "github.com/infra-whizz/build-box/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nullHelper pretends every mount request succeeded without mounting anything.
type nullHelper struct {
	calls []string
}

func (h *nullHelper) Init() error {
	h.calls = append(h.calls, "init")
	return nil
}

func (h *nullHelper) Mount(root string, mountpoints ...string) error {
	h.calls = append(h.calls, "mount "+strings.Join(mountpoints, ","))
	return nil
}

func (h *nullHelper) Umount(root string) error {
	h.calls = append(h.calls, "umount")
	return nil
}

// fakeProcFS is an empty process table with a mount table of "/" only.
func fakeProcFS(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "4242"), 0755))
	require.NoError(t, os.Symlink("4242", filepath.Join(dir, "self")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "4242", "mountinfo"),
		[]byte("21 1 8:1 / / rw,relatime shared:1 - ext4 /dev/sda1 rw\n"), 0644))
	return dir
}

// fakeOpkg installs a shell into the offline root on every install.
func fakeOpkg(t *testing.T) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "opkg")
	body := "#!/bin/sh\nif [ \"$5\" = install ]; then mkdir -p \"$4/usr/bin\" && ln -sf /bin/busybox \"$4/usr/bin/sh\"; fi\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))
	return script
}

func testBuildBox(t *testing.T) (*BuildBox, *nullHelper, *bytes.Buffer) {
	t.Helper()
	conf := NewConfig()
	conf.Targets = filepath.Join(t.TempDir(), "targets")
	conf.Release = "ollie"
	conf.Arch = "x86-64"
	conf.Cache = t.TempDir()
	conf.Opkg = fakeOpkg(t)

	out := &bytes.Buffer{}
	helper := &nullHelper{}
	return NewBuildBox(conf, out).SetMountHelper(helper).SetProcFS(fakeProcFS(t)), helper, out
}

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	spec := filepath.Join(t.TempDir(), "base.spec")
	require.NoError(t, os.WriteFile(spec, []byte(content), 0644))
	return spec
}

func TestLoadConfigFile(t *testing.T) {
	confpath := filepath.Join(t.TempDir(), "build-box.conf")
	require.NoError(t, os.WriteFile(confpath, []byte("targets: /srv/targets\nrelease: ollie\nlibc: glibc\nhelper: /usr/libexec/build-box-do\n"), 0644))

	conf := NewConfig()
	require.NoError(t, conf.LoadFile(confpath))
	assert.Equal(t, "/srv/targets", conf.Targets)
	assert.Equal(t, "ollie", conf.Release)
	assert.Equal(t, "glibc", conf.Libc)
	assert.Equal(t, "/usr/libexec/build-box-do", conf.Helper)
	assert.Equal(t, "opkg", conf.Opkg)
	assert.Equal(t, DefaultRepoBase, conf.RepoBase)
	assert.True(t, conf.Verify)
}

func TestLoadConfigMissingFile(t *testing.T) {
	conf := NewConfig()
	require.NoError(t, conf.LoadFile(filepath.Join(t.TempDir(), "nope.conf")))
	assert.Equal(t, NewConfig(), conf)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	confpath := filepath.Join(t.TempDir(), "build-box.conf")
	require.NoError(t, os.WriteFile(confpath, []byte("opkg: /opt/bin/opkg\nrepo-base: http://mirror.example.org/dists\nhelper: \"\"\n"), 0644))

	conf := NewConfig()
	require.NoError(t, conf.LoadFile(confpath))
	assert.Equal(t, "/opt/bin/opkg", conf.Opkg)
	assert.Equal(t, "http://mirror.example.org/dists", conf.RepoBase)
	assert.Equal(t, "build-box-do", conf.Helper)
	assert.Equal(t, bbox_arch.LibcMusl, conf.Libc)
}

func TestLoadConfigMalformed(t *testing.T) {
	confpath := filepath.Join(t.TempDir(), "build-box.conf")
	require.NoError(t, os.WriteFile(confpath, []byte("targets: [unterminated\nrelease: : :\n"), 0644))

	conf := NewConfig()
	assert.ErrorIs(t, conf.LoadFile(confpath), bbox_lib.ErrConfig)
	assert.Equal(t, NewConfig(), conf)
}

func TestConfigDerivedValues(t *testing.T) {
	conf := NewConfig()
	conf.Arch = "x86-64"
	machine, err := conf.Machine()
	require.NoError(t, err)
	assert.Equal(t, "x86_64", machine)

	cache, err := conf.CacheDir()
	require.NoError(t, err)
	home, err := bbox_lib.HomeDir()
	require.NoError(t, err)
	assert.Equal(t, path.Join(home, ".cache", "build-box"), cache)

	dir := bbox_lib.CanonicalPath(t.TempDir())
	conf.Targets = dir + "/sub/../targets"
	prefix, err := conf.Prefix()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "targets"), prefix)
}

func TestCreateListInfoDelete(t *testing.T) {
	bb, helper, out := testBuildBox(t)
	spec := writeSpec(t, "+ busybox\n")

	require.NoError(t, bb.Create(context.Background(), "alpha", []string{spec}, false))
	assert.Equal(t, []string{"init", "mount dev,proc,sys", "umount"}, helper.calls)

	require.NoError(t, os.MkdirAll(filepath.Join(bb.Config().Targets, "broken"), 0755))
	require.NoError(t, bb.List())
	assert.Equal(t, "alpha\nbroken (defunct)\n", out.String())

	out.Reset()
	require.NoError(t, bb.Info("alpha", FormatText, "target_type"))
	assert.Equal(t, "x86_64-bolt-linux-musl\n", out.String())

	require.NoError(t, bb.Delete(context.Background(), "alpha", "broken"))
	out.Reset()
	require.NoError(t, bb.List())
	assert.Empty(t, out.String())
}

func TestCreateBadSpec(t *testing.T) {
	bb, helper, _ := testBuildBox(t)
	spec := writeSpec(t, "+\n")

	assert.ErrorIs(t, bb.Create(context.Background(), "alpha", []string{spec}, false), bbox_lib.ErrSpecParse)
	assert.Empty(t, helper.calls)
}

func TestCreateRequiresRelease(t *testing.T) {
	bb, _, _ := testBuildBox(t)
	bb.Config().Release = ""
	assert.ErrorIs(t, bb.Create(context.Background(), "alpha", []string{writeSpec(t, "+ busybox\n")}, false), bbox_lib.ErrConfig)
}

func TestInfoFormats(t *testing.T) {
	bb, _, out := testBuildBox(t)
	dir := filepath.Join(bb.Config().Targets, "alpha")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "etc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "etc", "target"), []byte("TARGET_ID=alpha\n"), 0644))

	require.NoError(t, bb.Info("alpha", FormatText, ""))
	prefix, err := bb.Config().Prefix()
	require.NoError(t, err)
	assert.Equal(t, "  sysroot: "+path.Join(prefix, "alpha")+"\ntarget_id: alpha\n", out.String())

	out.Reset()
	require.NoError(t, bb.Info("alpha", FormatJSON, "target_id"))
	assert.Equal(t, "{\n    \"target_id\": \"alpha\"\n}\n", out.String())

	out.Reset()
	require.NoError(t, bb.Info("alpha", FormatYAML, "target_id"))
	assert.Equal(t, "target_id: alpha\n", out.String())

	assert.ErrorIs(t, bb.Info("alpha", FormatText, "no_such_key"), bbox_lib.ErrNotFound)
	assert.ErrorIs(t, bb.Info("beta", FormatText, ""), bbox_lib.ErrNotFound)
}

func TestDeleteUnknown(t *testing.T) {
	bb, helper, _ := testBuildBox(t)
	assert.ErrorIs(t, bb.Delete(context.Background(), "ghost"), bbox_lib.ErrNotFound)
	assert.Empty(t, helper.calls)
}
