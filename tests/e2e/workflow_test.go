package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const testUser = "e2e-user"

// TestEndToEndWorkflow drives a built moodlit binary through a full journal
// session against an isolated SQLite file. Build with `go build -o bin/moodlit
// ./cmd/moodlit` or point MOODLIT_BIN_DIR at the binary's directory.
func TestEndToEndWorkflow(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get cwd: %v", err)
	}

	binDir := os.Getenv("MOODLIT_BIN_DIR")
	if binDir == "" {
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)
	cliPath := filepath.Join(binDir, "moodlit")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s; build it first", cliPath)
	}

	tempDir := t.TempDir()
	t.Logf("Running test in temp dir: %s", tempDir)

	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "MOODLIT_") {
			continue
		}
		env = append(env, e)
	}
	env = append(env,
		fmt.Sprintf("HOME=%s", tempDir),
		fmt.Sprintf("MOODLIT_CONFIG=%s", filepath.Join(tempDir, "moodlit", "moodlit.db")),
		fmt.Sprintf("MOODLIT_DEVICE=%s", filepath.Join(tempDir, "moodlit", "device.yaml")),
		// The session user normally lives in the OS keyring, which CI may not have.
		fmt.Sprintf("MOODLIT_USER=%s", testUser),
		"MOODLIT_TIMEZONE=UTC",
	)

	t.Log("Initializing storage...")
	expect(t, runCmd(t, cliPath, env, "init"), "Initialized moodlit storage")

	t.Log("Logging today's mood...")
	out := runCmd(t, cliPath, env, "log", "--mood", "7", "--factor", "Sleep", "--factor", "Work=negative", "--note", "slept well")
	expect(t, out, "Logged 7.0")
	expect(t, out, "First Step")

	t.Log("Resolving a same-day conflict...")
	expect(t, runCmd(t, cliPath, env, "log", "--mood", "3", "--keep"), "Kept the existing entry")
	expect(t, runCmd(t, cliPath, env, "log", "--mood", "8", "--replace"), "Replaced entry")

	out = runCmd(t, cliPath, env, "entries", "list")
	expect(t, out, "8.0")
	if strings.Contains(out, "7.0") {
		t.Errorf("replaced entry still listed:\n%s", out)
	}

	t.Log("Checking analytics and achievements...")
	runCmd(t, cliPath, env, "stats", "summary")
	expect(t, runCmd(t, cliPath, env, "achievements"), "Current streak: 1 days")

	out = runCmd(t, cliPath, env, "notify", "--dry-run")
	expect(t, out, "Today already has an entry")

	expect(t, runCmd(t, cliPath, env, "backup", "create"), "Backup created")
	expect(t, runCmd(t, cliPath, env, "doctor", "--skip-network"), "All diagnostics passed!")
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func expect(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Errorf("output missing %q:\n%s", want, out)
	}
}
