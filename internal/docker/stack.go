// stack.go implements stack container discovery via the Docker API.
// Compose labels every container it creates with its project and
// service names; filtering on "com.docker.compose.project" finds
// exactly the VoxNovel stack regardless of how containers were named.
package docker

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// Compose-assigned labels read back from containers.
const (
	// labelProject carries the compose project name.
	labelProject = "com.docker.compose.project"

	// labelService carries the compose service name.
	labelService = "com.docker.compose.service"
)

// ListStackContainers queries the Docker daemon for all containers
// belonging to the given compose project, including stopped ones. The
// filter runs server-side, which is cheaper than listing everything and
// filtering in Go.
func ListStackContainers(ctx context.Context, cli *Client, project string) ([]model.ServiceContainer, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", labelProject+"="+project),
	)

	// All:true also returns exited containers — a crashed service must
	// show up in status output, not vanish from it.
	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapDeployError(
			model.KindDocker,
			"failed to list stack containers",
			err,
		)
	}

	// Convert Docker API structs to domain types so the rest of the
	// application is decoupled from the SDK.
	result := make([]model.ServiceContainer, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToService(c))
	}

	return result, nil
}

// containerToService converts a Docker API Container struct to a
// model.ServiceContainer. Pure mapping, no side effects.
//
// The API returns container names with a leading "/" that is stripped
// for display.
func containerToService(c types.Container) model.ServiceContainer {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ServiceContainer{
		ID:      c.ID,
		Name:    name,
		Service: c.Labels[labelService],
		State:   c.State,
		Status:  c.Status,
	}
}

// StackState derives the aggregate state of a project's containers.
// Convenience wrapper combining ListStackContainers with
// model.DeriveStackState.
func StackState(ctx context.Context, cli *Client, project string) (model.StackState, []model.ServiceContainer, error) {
	containers, err := ListStackContainers(ctx, cli, project)
	if err != nil {
		return "", nil, err
	}

	states := make([]string, 0, len(containers))
	for _, c := range containers {
		states = append(states, c.State)
	}

	return model.DeriveStackState(states), containers, nil
}
