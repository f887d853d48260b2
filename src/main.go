// Command slc is the compiler entry point: parses the command line,
// runs the pipeline, and exits with the code spec.md section 6 assigns.
package main

import (
	"fmt"
	"os"

	"slc/src/pipeline"
	"slc/src/util"
)

func main() {
	opt, err := util.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(util.ExitUsage)
	}
	os.Exit(pipeline.Run(opt))
}
