// Package localnet runs a disposable single-node dev chain in Docker for
// local development against the SDK.
package localnet

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/arenaworks/arenakit/internal/logger"
	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const containerName = "arenakit-localnet"

// Service manages the dev chain container lifecycle.
type Service struct {
	cli    *client.Client
	image  string
	port   int
	chain  uint64
	logger *slog.Logger
}

// New creates a localnet service from the Docker environment.
func New(imageRef string, rpcPort int, chainID uint64) (*Service, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &Service{
		cli:    cli,
		image:  imageRef,
		port:   rpcPort,
		chain:  chainID,
		logger: logger.Named("localnet"),
	}, nil
}

// Close closes the Docker client connection.
func (s *Service) Close() error {
	return s.cli.Close()
}

// Up pulls the dev chain image if missing and starts the container with the
// RPC port published on localhost.
func (s *Service) Up(ctx context.Context) error {
	exists, err := s.imageExists(ctx)
	if err != nil {
		return err
	}

	if !exists {
		s.logger.With("image", s.image).Info("pulling dev chain image")
		reader, err := s.cli.ImagePull(ctx, s.image, image.PullOptions{})
		if err != nil {
			return fmt.Errorf("failed to pull image %s: %w", s.image, err)
		}
		_, _ = io.Copy(io.Discard, reader)
		reader.Close()
	}

	rpcPort, err := nat.NewPort("tcp", "8545")
	if err != nil {
		return fmt.Errorf("failed to build port spec: %w", err)
	}

	config := &container.Config{
		Image: s.image,
		Cmd: []string{
			"anvil",
			"--host", "0.0.0.0",
			"--chain-id", fmt.Sprintf("%d", s.chain),
		},
		ExposedPorts: nat.PortSet{rpcPort: struct{}{}},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			rpcPort: []nat.PortBinding{{
				HostIP:   "127.0.0.1",
				HostPort: fmt.Sprintf("%d", s.port),
			}},
		},
		AutoRemove: true,
	}

	created, err := s.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, containerName)
	if err != nil {
		return fmt.Errorf("failed to create localnet container: %w", err)
	}

	if err := s.cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start localnet container: %w", err)
	}

	s.logger.
		With("container_id", created.ID[:12]).
		With("rpc_port", s.port).
		With("chain_id", s.chain).
		Info("localnet started")

	return nil
}

// Down stops and removes the dev chain container. Already-gone is fine.
func (s *Service) Down(ctx context.Context) error {
	if err := s.cli.ContainerStop(ctx, containerName, container.StopOptions{}); err != nil {
		if errdefs.IsNotFound(err) {
			s.logger.Info("localnet container not running")
			return nil
		}
		return fmt.Errorf("failed to stop localnet container: %w", err)
	}

	if err := s.cli.ContainerRemove(ctx, containerName, container.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove localnet container: %w", err)
	}

	s.logger.Info("localnet stopped")

	return nil
}

func (s *Service) imageExists(ctx context.Context) (bool, error) {
	_, _, err := s.cli.ImageInspectWithRaw(ctx, s.image)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect image %s: %w", s.image, err)
	}
	return true, nil
}
