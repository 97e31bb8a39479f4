package process

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rocketscienceinc/snakerunner/internal/apperror"
)

// Interpreter runs scripts ending in Suffix as `Command Args... <module>` from the script's directory.
type Interpreter struct {
	Suffix  string
	Command string
	Args    []string
}

// Player is a running player program.
type Player interface {
	Stdin() io.Writer
	Stdout() io.Reader
	Kill()
}

type Supervisor struct {
	logger       *slog.Logger
	interpreters []Interpreter
}

func NewSupervisor(logger *slog.Logger, interpreters []Interpreter) *Supervisor {
	return &Supervisor{
		logger:       logger.With("component", "supervisor"),
		interpreters: interpreters,
	}
}

// Spawn starts the program behind script with piped stdin and stdout. Stderr is inherited.
func (that *Supervisor) Spawn(ctx context.Context, script string) (Player, error) {
	log := that.logger.With("method", "Spawn", "script", script)

	cmd := that.command(ctx, script)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperror.ErrSpawnFailed, script, err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperror.ErrSpawnFailed, script, err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperror.ErrSpawnFailed, script, err)
	}

	log.Debug("player process started", "pid", cmd.Process.Pid, "args", cmd.Args, "dir", cmd.Dir)

	return &Process{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
	}, nil
}

func (that *Supervisor) command(ctx context.Context, script string) *exec.Cmd {
	for _, interpreter := range that.interpreters {
		module, ok := strings.CutSuffix(script, interpreter.Suffix)
		if !ok {
			continue
		}

		args := append(append([]string{}, interpreter.Args...), filepath.Base(module))
		cmd := exec.CommandContext(ctx, interpreter.Command, args...)
		cmd.Dir = filepath.Dir(script)

		return cmd
	}

	// a bare name means an executable in the working directory, not one on PATH
	if !strings.ContainsRune(script, filepath.Separator) && !strings.ContainsRune(script, '/') {
		script = "." + string(filepath.Separator) + script
	}

	return exec.CommandContext(ctx, script)
}

// Process owns the pipes of one spawned player program.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	once sync.Once
}

func (that *Process) Stdin() io.Writer {
	return that.stdin
}

func (that *Process) Stdout() io.Reader {
	return that.stdout
}

func (that *Process) Pid() int {
	return that.cmd.Process.Pid
}

// Kill force-terminates and reaps the process. Safe to call more than once; errors are ignored
// because the program may already have exited.
func (that *Process) Kill() {
	that.once.Do(func() {
		_ = that.cmd.Process.Kill()
		_ = that.stdin.Close()
		_ = that.cmd.Wait()
	})
}
