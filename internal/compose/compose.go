package compose

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// File is the subset of a Docker Compose file that voxdeploy reads.
// Unknown top-level keys (networks, volumes, x-extensions) are ignored
// by the YAML decoder.
type File struct {
	// Services maps service names to their definitions.
	Services map[string]Service `yaml:"services"`
}

// Service is the subset of a compose service definition that voxdeploy
// reads: enough to report images, published ports, and GPU intent.
type Service struct {
	// Image is the container image reference, empty for build-only services.
	Image string `yaml:"image,omitempty"`

	// ContainerName is the fixed container name, if the operator pinned one.
	ContainerName string `yaml:"container_name,omitempty"`

	// Build is the build configuration. Compose allows either a string
	// (the context path) or a mapping, so it is kept as an untyped value
	// and only checked for presence.
	Build interface{} `yaml:"build,omitempty"`

	// Ports lists port mappings in compose short syntax
	// ("8080:8080", "127.0.0.1:8080:8080/tcp", "8080").
	Ports []string `yaml:"ports,omitempty"`

	// Environment lists environment entries in "KEY=value" or "KEY" form.
	Environment []string `yaml:"environment,omitempty"`

	// Volumes lists volume mappings in "host:container" short syntax.
	Volumes []string `yaml:"volumes,omitempty"`

	// Restart is the restart policy ("unless-stopped", "always", ...).
	Restart string `yaml:"restart,omitempty"`
}

// PortBinding is one published port parsed from compose short syntax.
type PortBinding struct {
	// Service is the compose service that publishes the port.
	Service string

	// HostIP is the bind address, empty when publishing on all interfaces.
	HostIP string

	// HostPort is the port on the host. Zero when the mapping only names
	// a container port (Docker assigns an ephemeral host port).
	HostPort int

	// ContainerPort is the port inside the container.
	ContainerPort int

	// Protocol is "tcp" or "udp"; defaults to "tcp".
	Protocol string
}

// Load reads and parses a compose file. The file must exist and define
// at least one service — an empty or service-less compose file would
// make every later pipeline stage a silent no-op, so it is rejected
// up front.
//
// Returns a model.DeployError with KindUsage when the file is missing
// or malformed.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.NewDeployError(model.KindUsage,
				fmt.Sprintf("compose file %q not found — run voxdeploy from the directory containing it", path))
		}
		return nil, model.WrapDeployError(model.KindUsage,
			fmt.Sprintf("cannot read compose file %q", path), err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, model.WrapDeployError(model.KindUsage,
			fmt.Sprintf("invalid compose file %q", path), err)
	}

	if len(f.Services) == 0 {
		return nil, model.NewDeployError(model.KindUsage,
			fmt.Sprintf("compose file %q defines no services", path))
	}

	return &f, nil
}

// ServiceNames returns the service names sorted alphabetically for
// deterministic report output.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PublishedPorts parses the short-syntax port mappings of every service.
// Malformed entries are skipped rather than failing the deploy — the
// compose CLI itself is the authority on compose syntax, and a mapping
// voxdeploy cannot parse only degrades the report, not the deployment.
func (f *File) PublishedPorts() []PortBinding {
	var bindings []PortBinding
	for _, svc := range f.ServiceNames() {
		for _, spec := range f.Services[svc].Ports {
			b, err := parsePortSpec(spec)
			if err != nil {
				continue
			}
			b.Service = svc
			bindings = append(bindings, b)
		}
	}
	return bindings
}

// PublishesHostPort reports whether any service publishes the given
// host port. The deploy report uses this to confirm the web interface
// port before printing the access URL.
func (f *File) PublishesHostPort(port int) bool {
	for _, b := range f.PublishedPorts() {
		if b.HostPort == port {
			return true
		}
	}
	return false
}

// parsePortSpec parses one compose short-syntax port entry:
//
//	"8080"                    → container port only
//	"8080:8080"               → host:container
//	"127.0.0.1:8080:8080"     → ip:host:container
//	"8080:8080/udp"           → with protocol suffix
func parsePortSpec(spec string) (PortBinding, error) {
	b := PortBinding{Protocol: "tcp"}

	spec = strings.TrimSpace(spec)
	if spec == "" {
		return b, fmt.Errorf("empty port spec")
	}

	// Split off the protocol suffix first.
	if idx := strings.LastIndex(spec, "/"); idx >= 0 {
		proto := strings.ToLower(spec[idx+1:])
		if proto != "tcp" && proto != "udp" {
			return b, fmt.Errorf("invalid protocol %q in port spec %q", proto, spec)
		}
		b.Protocol = proto
		spec = spec[:idx]
	}

	parts := strings.Split(spec, ":")
	switch len(parts) {
	case 1:
		// Container port only; Docker picks the host port at runtime.
		cp, err := parsePort(parts[0])
		if err != nil {
			return b, err
		}
		b.ContainerPort = cp

	case 2:
		hp, err := parsePort(parts[0])
		if err != nil {
			return b, err
		}
		cp, err := parsePort(parts[1])
		if err != nil {
			return b, err
		}
		b.HostPort = hp
		b.ContainerPort = cp

	case 3:
		b.HostIP = parts[0]
		hp, err := parsePort(parts[1])
		if err != nil {
			return b, err
		}
		cp, err := parsePort(parts[2])
		if err != nil {
			return b, err
		}
		b.HostPort = hp
		b.ContainerPort = cp

	default:
		return b, fmt.Errorf("invalid port spec %q", spec)
	}

	return b, nil
}

// parsePort converts a port string to an int and range-checks it.
func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range (1-65535)", p)
	}
	return p, nil
}
