package bbox_pm

import (
	"fmt"
	"strings"
)

func writeLines(lines ...string) string {
	var buff strings.Builder
	for _, line := range lines {
		buff.WriteString(fmt.Sprintf("%s\n", line))
	}
	return buff.String()
}

// renderOpkgConfig returns opkg.conf for the target: cache, signature
// checks, feeds and architecture tags.
func (b *Bootstrapper) renderOpkgConfig() string {
	checkSig := ""
	if b.opts.Verify {
		checkSig = "option check_signature"
	}
	feed := fmt.Sprintf("%s/%s/core/%s/%s", strings.TrimRight(b.opts.RepoBase, "/"), b.opts.Release, b.opts.Arch, b.opts.Libc)

	return writeLines(
		"option cache_dir /.pkg-cache",
		"option signature_type usign",
		"option no_install_recommends",
		"option force_removal_of_dependent_packages",
		"option force_postinstall",
		"",
		checkSig,
		"",
		fmt.Sprintf("src/gz main %s/main", feed),
		fmt.Sprintf("src/gz main-debug %s/main-debug", feed),
		fmt.Sprintf("src/gz tools %s/tools/%s", feed, b.opts.HostArch),
		fmt.Sprintf("src/gz tools-debug %s/tools-debug/%s", feed, b.opts.HostArch),
		"",
		fmt.Sprintf("arch %s 1", b.opts.Arch),
		"arch all 1",
		"arch tools 1",
		"",
		"dest root /",
	)
}

// renderEtcTarget returns the target metadata file.
func (b *Bootstrapper) renderEtcTarget(targetID string) string {
	return writeLines(
		fmt.Sprintf("TARGET_ID=%s", targetID),
		fmt.Sprintf("TARGET_MACHINE=%s", b.opts.Arch),
		fmt.Sprintf("TARGET_TYPE=%s", b.targetType),
		fmt.Sprintf("TOOLS_TYPE=%s-tools-linux-musl", b.opts.HostArch),
	)
}
