package process

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoScript = `#!/bin/sh
while read -r line; do
	echo "got:$line"
done
`

func newTestSupervisor(interpreters ...Interpreter) *Supervisor {
	return NewSupervisor(slog.New(slog.NewTextHandler(io.Discard, nil)), interpreters)
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))

	return path
}

func requireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("player scripts need a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestSupervisor_Spawn(t *testing.T) {
	requireShell(t)

	t.Run("Runs a local executable with piped stdin and stdout", func(t *testing.T) {
		// Given: an executable echo script
		script := writeScript(t, t.TempDir(), "echo", echoScript)
		supervisor := newTestSupervisor()

		// When: it is spawned and sent a line
		player, err := supervisor.Spawn(context.Background(), script)
		require.NoError(t, err)
		t.Cleanup(player.Kill)

		_, err = io.WriteString(player.Stdin(), "move\n")
		require.NoError(t, err)

		// Then: its answer arrives on stdout
		line, err := bufio.NewReader(player.Stdout()).ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "got:move\n", line)
	})

	t.Run("Runs interpreted scripts as modules from their own directory", func(t *testing.T) {
		// Given: a module "bot" next to the script path bot.sh and a shell standing in for the interpreter
		dir := t.TempDir()
		writeScript(t, dir, "bot", "echo \"$(basename \"$PWD\")\"\n")
		supervisor := newTestSupervisor(Interpreter{Suffix: ".sh", Command: "sh"})

		// When: bot.sh is spawned
		player, err := supervisor.Spawn(context.Background(), filepath.Join(dir, "bot.sh"))
		require.NoError(t, err)
		t.Cleanup(player.Kill)

		// Then: the module ran with the script's directory as working directory
		line, err := bufio.NewReader(player.Stdout()).ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(dir)+"\n", line)
	})

	t.Run("Fails for a missing program", func(t *testing.T) {
		supervisor := newTestSupervisor()

		_, err := supervisor.Spawn(context.Background(), filepath.Join(t.TempDir(), "missing"))

		require.ErrorIs(t, err, apperror.ErrSpawnFailed)
	})
}

func TestProcess_Kill(t *testing.T) {
	requireShell(t)

	// Given: a program that never answers
	script := writeScript(t, t.TempDir(), "sleeper", "#!/bin/sh\nexec sleep 60\n")
	player, err := newTestSupervisor().Spawn(context.Background(), script)
	require.NoError(t, err)

	// When: it is killed twice
	player.Kill()
	player.Kill()

	// Then: its stdout is closed promptly
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(player.Stdout()).ReadString('\n')
		done <- err
	}()

	select {
	case err = <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stdout still open after kill")
	}
}
