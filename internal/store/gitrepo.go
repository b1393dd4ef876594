package store

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// git runs one git command against the repository at dir. The on-disk store
// is a plain git repository on purpose: history stays inspectable with stock
// git tooling, and crash recovery is a human reading `git status`.
func git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
