package pipeline

import (
	"os"
	"os/exec"
	"runtime"
)

// Link invokes the host linker with the fixed argument template spec.md
// section 6 specifies, producing out from obj.
func Link(obj, out string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("clang", "-o", out, obj)
	} else {
		cmd = exec.Command("clang", "-lc", "-lm", "-o", out, obj)
	}
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
