package harness

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oamg/c2r-test-harness/framework/shell"
)

// ToolInfo is what the harness learns about the tool when it starts.
type ToolInfo struct {
	// Path is the executable as given in the session configuration.
	Path string

	// Version is the last word of the first line that the tool printed for --version, such as
	// "2.1.0" for "convert2rhel 2.1.0".
	Version string
}

func queryToolInfo(ctx context.Context, executor shell.Executor, toolPath string, output io.Writer) (ToolInfo, error) {
	fmt.Fprintf(output, "Checking %s\n", toolPath)

	result, err := executor.Run(ctx, shell.Quote(toolPath)+" --version")
	if err != nil {
		return ToolInfo{}, fmt.Errorf("could not run %s: %w", toolPath, err)
	}
	if !result.Succeeded() {
		return ToolInfo{}, fmt.Errorf("%s --version exited with status %d: %s",
			toolPath, result.ExitCode, strings.TrimSpace(result.Output))
	}
	info := ToolInfo{Path: toolPath, Version: parseVersion(result.Output)}
	if info.Version == "" {
		fmt.Fprintf(output, "Tool did not report a version\n")
	} else {
		fmt.Fprintf(output, "Tool version is %s\n", info.Version)
	}
	return info, nil
}

func parseVersion(output string) string {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 0 {
			return fields[len(fields)-1]
		}
	}
	return ""
}
