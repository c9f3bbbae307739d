package editor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// command splits $EDITOR (or $VISUAL) so values like "code --wait" work.
func command() []string {
	for _, key := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(key)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

func Open(filepath string) error {
	argv := command()
	cmd := exec.Command(argv[0], append(argv[1:], filepath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q: %w", strings.Join(argv, " "), err)
	}
	return nil
}
