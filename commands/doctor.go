package commands

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/jerry-desk/bridgecli/config"
	"github.com/jerry-desk/bridgecli/desktop"
	"github.com/jerry-desk/bridgecli/memorydb"
)

type DoctorInfo struct {
	Success             bool   `json:"success"`
	Version             string `json:"bridgecli_version"`
	OS                  string `json:"os"`
	OSVersion           string `json:"os_version"`
	Arch                string `json:"arch"`
	GoVersion           string `json:"go_version"`
	DesktopBackend      bool   `json:"desktop_backend"`
	DisplayAvailable    bool   `json:"display_available"`
	Display             string `json:"display,omitempty"`
	ConfigPath          string `json:"config_path,omitempty"`
	Neo4jURI            string `json:"neo4j_uri"`
	Neo4jUser           string `json:"neo4j_user"`
	Neo4jDatabase       string `json:"neo4j_database,omitempty"`
	Neo4jPasswordSource string `json:"neo4j_password_source"`
	MemoryDriver        string `json:"memory_driver,omitempty"`
	MemoryLimit         int    `json:"memory_limit"`
}

func getOSVersion() string {
	switch runtime.GOOS {
	case "darwin":
		cmd := exec.Command("sw_vers", "-productVersion")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "windows":
		cmd := exec.Command("cmd", "/c", "ver")
		output, err := cmd.CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "linux":
		// try reading /etc/os-release
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return ""
		}
		lines := strings.Split(string(data), "\n")
		for _, line := range lines {
			if strings.HasPrefix(line, "PRETTY_NAME=") {
				return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
			}
		}
		return ""
	default:
		return ""
	}
}

// DoctorCommand reports what each bridge would use on this machine. The
// Neo4j password itself is never included.
func DoctorCommand(version string, cfg *config.Config) *DoctorInfo {
	info := &DoctorInfo{
		Success:             true,
		Version:             version,
		OS:                  runtime.GOOS,
		OSVersion:           getOSVersion(),
		Arch:                runtime.GOARCH,
		GoVersion:           runtime.Version(),
		DesktopBackend:      desktop.Available(),
		DisplayAvailable:    desktop.HasDisplay(),
		ConfigPath:          cfg.Path,
		Neo4jURI:            cfg.Neo4j.URI,
		Neo4jUser:           cfg.Neo4j.User,
		Neo4jDatabase:       cfg.Neo4j.Database,
		Neo4jPasswordSource: cfg.Neo4j.PasswordSource,
		MemoryLimit:         cfg.Memory.Limit,
	}

	// only meaningful where X11 is used
	if runtime.GOOS == "linux" {
		info.Display = os.Getenv("DISPLAY")
	}

	if cfg.Memory.DSN != "" {
		info.MemoryDriver = memorydb.Scheme(cfg.Memory.DSN)
	}

	return info
}
