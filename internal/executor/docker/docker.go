// Package docker is the container sandbox backend. Each request runs inside
// a locked-down container: no network, read-only root filesystem, memory and
// CPU limits, an unprivileged user.
//
// SCOPE:
// This backend serves interpreted languages only. The program travels over
// the exec's attached stdin ("python -", "node -"), so no source file ever
// touches a filesystem — which also means there is no compile step to host.
// Deployments that need compiled languages use the process backend.
package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/nbekzat/codelab/internal/executor"
	"github.com/nbekzat/codelab/internal/model"
	"github.com/nbekzat/codelab/internal/runner"
)

// stdinCommand is the argv that makes each language's interpreter read the
// program from stdin.
var stdinCommand = map[string][]string{
	"python":     {"python", "-"},
	"javascript": {"node", "-"},
}

// Executor implements the executor.Executor interface using Docker.
type Executor struct {
	cli    *client.Client
	config Config
	logger *slog.Logger
	pool   *Pool
}

// New creates a new Docker Executor and initializes the connection.
func New(cfg Config, logger *slog.Logger) (*Executor, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	// Make sure every configured image is pulled before we accept traffic.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for language, img := range cfg.Images {
		logger.Info("ensuring docker image is available",
			slog.String("language", language), slog.String("image", img))
		reader, err := cli.ImagePull(ctx, img, image.PullOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to pull image %s: %w", img, err)
		}
		// Read everything to block until the pull is complete
		io.Copy(io.Discard, reader)
		reader.Close()
	}
	logger.Info("docker images are ready")

	exec := &Executor{
		cli:    cli,
		config: cfg,
		logger: logger,
	}

	exec.pool = NewPool(cli, cfg, logger)
	exec.pool.Start()

	return exec, nil
}

// Close shuts down the executor pool and docker client.
func (e *Executor) Close() error {
	e.pool.Stop()
	return e.cli.Close()
}

// Execute runs the provided code in a sandboxed Docker container.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*model.ExecutionResult, error) {
	start := time.Now()

	img, imageOK := e.config.Images[req.Language]
	cmd, cmdOK := stdinCommand[req.Language]
	if !imageOK || !cmdOK {
		return &model.ExecutionResult{
			Status:   model.StatusFailure,
			Stderr:   fmt.Sprintf("language %s is not available on the docker sandbox backend", req.Language),
			ExitCode: -1,
		}, nil
	}

	// The pool language gets a pre-warmed container; everything else pays
	// the cold-start cost.
	var containerID string
	var err error
	if req.Language == e.config.PoolLanguage {
		containerID, err = e.pool.GetContainer(ctx)
	} else {
		containerID, err = e.pool.CreateCold(img)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get container: %w", err)
	}

	// Always ensure we clean up the container that we acquired
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := e.cli.ContainerRemove(cleanupCtx, containerID, container.RemoveOptions{
			Force: true,
		})
		if err != nil {
			e.logger.Error("failed to remove container", slog.String("id", containerID), slog.String("error", err.Error()))
		}
	}()

	// We apply a timeout context purely for the exec wait
	executeCtx, executeCancel := context.WithTimeout(ctx, e.config.Timeout)
	defer executeCancel()

	execResp, err := e.cli.ContainerExecCreate(executeCtx, containerID, container.ExecOptions{
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		Cmd:          cmd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exec: %w", err)
	}

	attachResp, err := e.cli.ContainerExecAttach(executeCtx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to attach to exec: %w", err)
	}
	defer attachResp.Close()

	// Deliver the program on stdin, then half-close so the interpreter
	// sees EOF and starts running.
	go func() {
		_, _ = attachResp.Conn.Write([]byte(req.Code))
		_ = attachResp.CloseWrite()
	}()

	capture := runner.NewCapture(e.config.MaxOutputBytes)

	// Channels to manage sync and timeout
	done := make(chan struct{})
	go func() {
		// Use stdcopy to demultiplex stdout from stderr
		_, _ = stdcopy.StdCopy(capture.Stdout(), capture.Stderr(), attachResp.Reader)
		close(done)
	}()

	var exitCode int
	var timedOut bool

	select {
	case <-done:
		// Completed normally
		inspectResp, err := e.cli.ContainerExecInspect(ctx, execResp.ID)
		if err == nil {
			exitCode = inspectResp.ExitCode
		}
	case <-executeCtx.Done():
		if ctx.Err() != nil {
			// The caller gave up, not the learner's program.
			return nil, ctx.Err()
		}
		timedOut = true
		exitCode = 124 // Custom exit code for timeout (similar to unix timeout command)
	}

	stdout, stderr, _ := capture.Finalize()

	result := &model.ExecutionResult{
		Stdout:        stdout,
		Stderr:        stderr,
		ExitCode:      exitCode,
		ExecutionTime: time.Since(start).Seconds(),
	}
	switch {
	case timedOut:
		result.Status = model.StatusTimeout
	case exitCode == 0:
		result.Status = model.StatusSuccess
	default:
		result.Status = model.StatusFailure
	}
	return result, nil
}
