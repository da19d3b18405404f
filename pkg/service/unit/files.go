package unit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/pkg/cli"
	"github.com/canonical/jhack/pkg/model"
	"github.com/canonical/jhack/pkg/types"
)

// RemotePath resolves p against the unit's charm root unless full is set.
func RemotePath(unit, p string, full bool) string {
	if full {
		return p
	}
	return types.CharmRoot(unit) + "/" + strings.TrimPrefix(p, "/")
}

// pushCommands returns the commands that push req, in order.
func (c *unitService) pushCommands(req *model.PushRequest) ([]cli.Command, error) {
	remote := RemotePath(req.Unit, req.RemotePath, req.FullPath)

	var cmds []cli.Command
	if req.Mkdir {
		cmds = append(cmds, c.sshCommand(req.Unit, req.Container, "mkdir", "-p", path.Dir(remote)))
	}

	switch req.Substrate {
	case model.SubstrateMachine:
		f, err := os.Open(req.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", req.LocalPath, err)
		}
		push := c.sshCommand(req.Unit, "", "sudo", "-i", fmt.Sprintf("sudo tee %s", remote))
		push.Stdin = f
		cmds = append(cmds, push)
	case model.SubstrateK8s, "":
		args := []string{}
		if req.Container != "" {
			args = append(args, "--container", req.Container)
		}
		args = append(args, req.LocalPath, req.Unit+":"+remote)
		cmds = append(cmds, c.juju.Command("scp", args...))
	default:
		return nil, fmt.Errorf("unknown substrate %q", req.Substrate)
	}
	return cmds, nil
}

func (c *unitService) PushFile(ctx context.Context, req *model.PushRequest) error {
	cmds, err := c.pushCommands(req)
	if err != nil {
		return err
	}
	defer closeStdin(cmds)

	if req.DryRun {
		for _, cmd := range cmds {
			c.printf("would run %s\n", cmd)
		}
		return nil
	}

	for _, cmd := range cmds {
		if _, err := c.runner.Output(ctx, cmd); err != nil {
			log.Error().Err(err).Msgf("%s failed", cmd)
			hint := ""
			if c.snapped {
				hint = " (verify that the path is readable by the jhack snap)"
			}
			return fmt.Errorf("failed to push %s to %s with %q%s: %w", req.LocalPath, req.Unit, cmd.String(), hint, err)
		}
	}
	return nil
}

func closeStdin(cmds []cli.Command) {
	for _, cmd := range cmds {
		if f, ok := cmd.Stdin.(*os.File); ok {
			f.Close()
		}
	}
}

func (c *unitService) PushString(ctx context.Context, text string, req *model.PushRequest) error {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	// the snap can only read files under the home directory
	tf, err := os.CreateTemp(home, ".jhack-push-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tf.Name())

	if _, err := tf.WriteString(text); err != nil {
		tf.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tf.Close(); err != nil {
		return err
	}

	r := *req
	r.LocalPath = tf.Name()
	return c.PushFile(ctx, &r)
}

func (c *unitService) FetchFile(ctx context.Context, file *model.RemoteFile, localPath string) (string, error) {
	remote := RemotePath(file.Unit, file.Path, file.FullPath)
	out, err := c.runner.Output(ctx, c.sshCommand(file.Unit, file.Container, "cat", remote))
	raw := string(out)
	if strings.Contains(raw, "No such file or directory") || isMissing(err) {
		return "", &model.NotFoundError{Kind: "file", Name: remote, Model: c.juju.Model}
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s from %s: %w", remote, file.Unit, err)
	}

	if localPath != "" {
		if err := os.WriteFile(localPath, out, 0o644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", localPath, err)
		}
	}
	return raw, nil
}

func isMissing(err error) bool {
	var exitErr *cli.ExitError
	return errors.As(err, &exitErr) && strings.Contains(exitErr.Stderr, "No such file or directory")
}

func (c *unitService) RemoveFile(ctx context.Context, file *model.RemoteFile) error {
	remote := RemotePath(file.Unit, file.Path, file.FullPath)
	cmd := c.sshCommand(file.Unit, file.Container, "rm", remote)
	if file.DryRun {
		c.printf("would run: %s\n", cmd)
		return nil
	}
	if _, err := c.runner.Output(ctx, cmd); err != nil {
		return fmt.Errorf("failed to remove %s from %s: %w", remote, file.Unit, err)
	}
	return nil
}

// ModifyRemoteFile fetches a file, passes its content through modify and pushes the result back.
func (c *unitService) ModifyRemoteFile(ctx context.Context, file *model.RemoteFile, modify func(string) (string, error)) error {
	content, err := c.FetchFile(ctx, file, "")
	if err != nil {
		return err
	}
	modified, err := modify(content)
	if err != nil {
		return err
	}
	return c.PushString(ctx, modified, &model.PushRequest{
		Unit:       file.Unit,
		RemotePath: file.Path,
		FullPath:   file.FullPath,
		Container:  file.Container,
		Substrate:  file.Substrate,
		DryRun:     file.DryRun,
	})
}
