package testutils

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"
)

var multiSpaceRegex = regexp.MustCompile(" +")

// RunOpsdesk executes an opsdesk command with the given arguments string (split by spaces).
// Use RunOpsdeskArgs when arguments contain spaces that should be preserved.
func RunOpsdesk(ctx context.Context, env []string, binary, cmdArgs string, nolog bool) (stdout, stderr []byte, err error) {
	cmdArgs = strings.TrimSpace(cmdArgs)
	cmdArgs = multiSpaceRegex.ReplaceAllString(cmdArgs, " ")

	var args []string
	if cmdArgs != "" {
		args = strings.Split(cmdArgs, " ")
	}

	return RunOpsdeskArgs(ctx, env, binary, args, nolog)
}

// RunOpsdeskArgs executes an opsdesk command with pre-split arguments.
func RunOpsdeskArgs(ctx context.Context, env []string, binary string, args []string, nolog bool) (stdout, stderr []byte, err error) {
	var outData, errData bytes.Buffer
	cmd := OpsdeskCmd(ctx, env, binary, args, nolog)
	cmd.Stdout = &outData
	cmd.Stderr = &errData

	err = cmd.Run()

	return outData.Bytes(), errData.Bytes(), err
}

// OpsdeskCmd returns an opsdesk command ready to start, for long running commands
// like serve.
func OpsdeskCmd(ctx context.Context, env []string, binary string, args []string, nolog bool) *exec.Cmd {
	cmd := exec.CommandContext(ctx, binary, args...)

	// Custom env goes after os.Environ(), the last duplicated key wins.
	newEnv := append([]string{}, os.Environ()...)
	newEnv = append(newEnv, env...)
	if nolog {
		newEnv = append(newEnv, "OPSDESK_NO_LOG=true")
	}
	cmd.Env = newEnv

	return cmd
}
