package cmd

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
)

// RunExtension attempts to find and execute an external atrack-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// The configuration is passed down as ATRACK_* environment variables.
func (c *Config) RunExtension(subcommand string, args []string) (bool, int) {
	name := "atrack-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		slog.Debug("external command not found", "command", name, "error", err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), c.Env()...)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		slog.Error("executing external command", "command", name, "error", err)
		return true, 1
	}
	return true, 0
}
