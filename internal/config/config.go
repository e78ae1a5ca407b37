package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/voxnovel/voxdeploy/internal/model"
)

// DefaultFileName is the settings file probed in the working directory.
// The file is optional; a missing file means defaults plus environment
// overrides.
const DefaultFileName = "voxdeploy.jsonc"

// Settings holds every tunable of the deployment pipeline.
//
// The zero value is not usable — always start from Default() so that a
// partially populated settings file inherits the stock values for the
// fields it omits.
type Settings struct {
	// ComposeFile is the compose file driving the stack. The deploy
	// command refuses to run when this file is absent from the working
	// directory.
	ComposeFile string `json:"composeFile"`

	// ProjectName is the compose project name (-p flag). It prefixes
	// container, network, and volume names, and is the label value used
	// to find the stack's containers via the Docker API.
	ProjectName string `json:"projectName"`

	// DataDirs are the host directories created before the stack starts,
	// relative to the working directory. They back the container volume
	// mounts declared in the compose file.
	DataDirs []string `json:"dataDirs"`

	// DirMode is the permission mode applied to created directories,
	// written in octal string form ("0755") for readability in JSONC.
	DirMode string `json:"dirMode"`

	// WebPort is the host port the VoxNovel web interface publishes.
	WebPort int `json:"webPort"`

	// HealthPath is the HTTP path probed on the web port during the
	// readiness phase. The VoxNovel web server serves a JSON health
	// document at /health.
	HealthPath string `json:"healthPath"`

	// ReadinessTimeoutSec bounds how long the deploy command waits for
	// all containers to come up before declaring failure.
	ReadinessTimeoutSec int `json:"readinessTimeoutSec"`

	// PollIntervalSec is the delay between readiness polls.
	PollIntervalSec int `json:"pollIntervalSec"`

	// GPU controls the NVIDIA portions of the pipeline:
	//   "auto" — enable when nvidia-smi is present on the host
	//   "on"   — always check/install the toolkit and run the smoke test
	//   "off"  — skip all GPU handling
	GPU string `json:"gpu"`

	// PassEnv lists environment variables forwarded verbatim from the
	// voxdeploy process into the docker compose invocation. The compose
	// file consumes them via variable substitution.
	PassEnv []string `json:"passEnv"`

	// LogFile is the path of the deployment transcript written by the
	// mutating commands (deploy, check --install, down).
	LogFile string `json:"logFile"`
}

// GPU mode values accepted by Settings.GPU.
const (
	GPUAuto = "auto"
	GPUOn   = "on"
	GPUOff  = "off"
)

// Default returns the stock VoxNovel Proxmox deployment settings.
// The directory list mirrors the layout the web server expects under
// its volume mounts, plus the nginx config directory from the
// reverse-proxy guide.
func Default() Settings {
	return Settings{
		ComposeFile: "docker-compose.proxmox.yml",
		ProjectName: "voxnovel",
		DataDirs: []string{
			"data/uploads",
			"data/output_audiobooks",
			"data/Working_files",
			"data/Working_files/generated_audio_clips",
			"data/Working_files/temp_ebook",
			"data/Final_combined_output_audio",
			"data/tortoise",
			"nginx",
		},
		DirMode:             "0755",
		WebPort:             8080,
		HealthPath:          "/health",
		ReadinessTimeoutSec: 120,
		PollIntervalSec:     2,
		GPU:                 GPUAuto,
		PassEnv: []string{
			"NVIDIA_VISIBLE_DEVICES",
			"CUDA_VISIBLE_DEVICES",
		},
		LogFile: "voxdeploy.log",
	}
}

// Load builds the effective settings: defaults, overlaid by the settings
// file at path (skipped if path is "" or the file does not exist),
// overlaid by VOXDEPLOY_* environment variables.
//
// Returns a model.DeployError with KindUsage when the file exists but
// cannot be parsed or when an override value is malformed.
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		if err := loadFromFile(&s, path); err != nil {
			return s, err
		}
	}

	if err := overrideFromEnv(&s); err != nil {
		return s, err
	}

	if err := s.Validate(); err != nil {
		return s, err
	}

	return s, nil
}

// loadFromFile overlays settings from a JSONC file. A missing file is
// not an error — the settings file is optional.
func loadFromFile(s *Settings, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return model.WrapDeployError(model.KindUsage,
			fmt.Sprintf("cannot read settings file %q", path), err)
	}

	// Strip JSONC comments and trailing commas, then parse with the
	// standard library. Unknown fields are ignored so older binaries
	// tolerate newer settings files.
	clean := jsonc.ToJSON(raw)
	if err := json.Unmarshal(clean, s); err != nil {
		return model.WrapDeployError(model.KindUsage,
			fmt.Sprintf("invalid settings file %q", path), err)
	}

	return nil
}

// envOverrides maps VOXDEPLOY_* variable names to setter functions.
// String values apply directly; numeric values go through strconv so a
// malformed override fails loudly instead of silently using a default.
func overrideFromEnv(s *Settings) error {
	if v := os.Getenv("VOXDEPLOY_COMPOSE_FILE"); v != "" {
		s.ComposeFile = v
	}
	if v := os.Getenv("VOXDEPLOY_PROJECT"); v != "" {
		s.ProjectName = v
	}
	if v := os.Getenv("VOXDEPLOY_GPU"); v != "" {
		s.GPU = v
	}
	if v := os.Getenv("VOXDEPLOY_LOG_FILE"); v != "" {
		s.LogFile = v
	}
	if v := os.Getenv("VOXDEPLOY_WEB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return model.WrapDeployError(model.KindUsage,
				fmt.Sprintf("invalid VOXDEPLOY_WEB_PORT %q", v), err)
		}
		s.WebPort = port
	}
	if v := os.Getenv("VOXDEPLOY_READINESS_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return model.WrapDeployError(model.KindUsage,
				fmt.Sprintf("invalid VOXDEPLOY_READINESS_TIMEOUT %q", v), err)
		}
		s.ReadinessTimeoutSec = secs
	}
	return nil
}

// Validate checks cross-field consistency of the effective settings.
func (s *Settings) Validate() error {
	if s.ComposeFile == "" {
		return model.NewDeployError(model.KindUsage, "composeFile must not be empty")
	}
	if s.ProjectName == "" {
		return model.NewDeployError(model.KindUsage, "projectName must not be empty")
	}
	if s.WebPort < 1 || s.WebPort > 65535 {
		return model.NewDeployError(model.KindUsage,
			fmt.Sprintf("webPort %d out of range (1-65535)", s.WebPort))
	}
	if s.ReadinessTimeoutSec < 1 {
		return model.NewDeployError(model.KindUsage, "readinessTimeoutSec must be positive")
	}
	if s.PollIntervalSec < 1 {
		return model.NewDeployError(model.KindUsage, "pollIntervalSec must be positive")
	}
	switch s.GPU {
	case GPUAuto, GPUOn, GPUOff:
	default:
		return model.NewDeployError(model.KindUsage,
			fmt.Sprintf("invalid gpu mode %q (valid: auto, on, off)", s.GPU))
	}
	if _, err := s.Mode(); err != nil {
		return err
	}
	return nil
}

// Mode parses DirMode into an os.FileMode. The string is octal, with or
// without a leading "0" ("755" and "0755" are equivalent).
func (s *Settings) Mode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(s.DirMode, 8, 32)
	if err != nil {
		return 0, model.WrapDeployError(model.KindUsage,
			fmt.Sprintf("invalid dirMode %q: must be octal like \"0755\"", s.DirMode), err)
	}
	return os.FileMode(mode), nil
}

// ReadinessTimeout returns the readiness deadline as a time.Duration.
func (s *Settings) ReadinessTimeout() time.Duration {
	return time.Duration(s.ReadinessTimeoutSec) * time.Second
}

// PollInterval returns the poll delay as a time.Duration.
func (s *Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalSec) * time.Second
}

// ComposeEnv collects the pass-through environment variables that are
// currently set in the voxdeploy process. Unset and empty variables are
// omitted so the compose file's own defaults still apply.
func (s *Settings) ComposeEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range s.PassEnv {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return env
}
