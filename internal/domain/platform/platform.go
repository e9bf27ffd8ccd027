// Package platform detects the host a provisioning run executes on: native
// Linux, WSL 1 or 2 with or without Windows interop, or native Windows.
package platform

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/felixgeelhaar/wslup/internal/ports"
)

// OS represents the operating system type.
type OS string

const (
	// OSLinux is Linux (native or WSL).
	OSLinux OS = "linux"
	// OSWindows is Windows.
	OSWindows OS = "windows"
	// OSDarwin is macOS. Detected so it can be rejected clearly.
	OSDarwin OS = "darwin"
	// OSUnknown is an unsupported OS.
	OSUnknown OS = "unknown"
)

// Environment represents the execution environment.
type Environment string

const (
	// EnvNative is a native OS environment.
	EnvNative Environment = "native"
	// EnvWSL1 is Windows Subsystem for Linux version 1.
	EnvWSL1 Environment = "wsl1"
	// EnvWSL2 is Windows Subsystem for Linux version 2.
	EnvWSL2 Environment = "wsl2"
)

// Well-known paths inspected during detection.
const (
	procVersionPath = "/proc/version"
	wslRunDir       = "/run/WSL"
	interopPath     = "/proc/sys/fs/binfmt_misc/WSLInterop"
	osReleasePath   = "/etc/os-release"
)

// Platform contains detected platform information.
type Platform struct {
	os          OS
	arch        string
	environment Environment
	distroID    string
	distroLike  []string
	distroName  string
	windowsPath string
	interop     bool
}

// Detector inspects the filesystem and environment to build a Platform.
type Detector struct {
	fs     ports.FileSystem
	getenv func(string) string
	goos   string
	goarch string
}

// NewDetector creates a Detector reading through fs.
func NewDetector(fs ports.FileSystem) *Detector {
	return &Detector{
		fs:     fs,
		getenv: os.Getenv,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}
}

// WithGOOS returns a Detector that pretends to run on goos.
func (d *Detector) WithGOOS(goos string) *Detector {
	c := *d
	c.goos = goos
	return &c
}

// WithEnv returns a Detector resolving environment variables through getenv.
func (d *Detector) WithEnv(getenv func(string) string) *Detector {
	c := *d
	c.getenv = getenv
	return &c
}

// Detect returns the current platform.
func (d *Detector) Detect() *Platform {
	p := &Platform{
		arch:        d.goarch,
		environment: EnvNative,
	}

	switch d.goos {
	case "linux":
		p.os = OSLinux
		d.detectLinux(p)
	case "windows":
		p.os = OSWindows
		p.interop = true
	case "darwin":
		p.os = OSDarwin
	default:
		p.os = OSUnknown
	}

	return p
}

func (d *Detector) detectLinux(p *Platform) {
	d.readOSRelease(p)

	version, err := d.fs.ReadFile(procVersionPath)
	if err != nil {
		return
	}
	kernel := strings.ToLower(string(version))
	if !strings.Contains(kernel, "microsoft") && !strings.Contains(kernel, "wsl") {
		return
	}

	// WSL 2 runs a real kernel and exposes /run/WSL.
	if d.fs.IsDir(wslRunDir) || strings.Contains(kernel, "wsl2") {
		p.environment = EnvWSL2
	} else {
		p.environment = EnvWSL1
	}

	if name := d.getenv("WSL_DISTRO_NAME"); name != "" {
		p.distroName = name
	}
	p.interop = d.fs.Exists(interopPath) || d.getenv("WSL_INTEROP") != ""
	p.windowsPath = d.windowsMount()
}

// readOSRelease parses ID and ID_LIKE from /etc/os-release.
func (d *Detector) readOSRelease(p *Platform) {
	data, err := d.fs.ReadFile(osReleasePath)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			p.distroID = strings.ToLower(value)
		case "ID_LIKE":
			p.distroLike = strings.Fields(strings.ToLower(value))
		}
	}
}

func (d *Detector) windowsMount() string {
	for _, path := range []string{"/mnt/c", "/c"} {
		if d.fs.IsDir(path+"/Windows") || d.fs.IsDir(path+"/Users") {
			return path
		}
	}
	return ""
}

// OS returns the operating system.
func (p *Platform) OS() OS {
	return p.os
}

// Arch returns the architecture.
func (p *Platform) Arch() string {
	return p.arch
}

// Environment returns the execution environment.
func (p *Platform) Environment() Environment {
	return p.environment
}

// DistroID returns the os-release ID, e.g. "ubuntu".
func (p *Platform) DistroID() string {
	return p.distroID
}

// DistroName returns the WSL distribution name (empty if not WSL).
func (p *Platform) DistroName() string {
	return p.distroName
}

// WindowsPath returns the Windows system drive mount in WSL (e.g. /mnt/c).
func (p *Platform) WindowsPath() string {
	return p.windowsPath
}

// IsWindows returns true if running on native Windows.
func (p *Platform) IsWindows() bool {
	return p.os == OSWindows
}

// IsLinux returns true if running on Linux (native or WSL).
func (p *Platform) IsLinux() bool {
	return p.os == OSLinux
}

// IsWSL returns true if running in WSL (1 or 2).
func (p *Platform) IsWSL() bool {
	return p.environment == EnvWSL1 || p.environment == EnvWSL2
}

// IsWSL2 returns true if running specifically in WSL 2.
func (p *Platform) IsWSL2() bool {
	return p.environment == EnvWSL2
}

// IsDebianFamily returns true for distributions managed by apt.
func (p *Platform) IsDebianFamily() bool {
	if p.distroID == "debian" || p.distroID == "ubuntu" {
		return true
	}
	for _, like := range p.distroLike {
		if like == "debian" || like == "ubuntu" {
			return true
		}
	}
	return false
}

// CanRunWindows returns true if Windows executables can be launched, either
// natively or through WSL interop.
func (p *Platform) CanRunWindows() bool {
	return p.IsWindows() || (p.IsWSL() && p.interop)
}

// TargetsWindows returns true if the host is Windows or sits on top of it.
func (p *Platform) TargetsWindows() bool {
	return p.IsWindows() || p.IsWSL()
}

// WindowsExe returns the name to invoke a Windows executable under. WSL
// interop only resolves names with the .exe suffix.
func (p *Platform) WindowsExe(name string) string {
	if p.IsWSL() && !strings.HasSuffix(name, ".exe") {
		return name + ".exe"
	}
	return name
}

// HasCommand checks if a command is available in PATH.
func (p *Platform) HasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// String returns a human-readable description.
func (p *Platform) String() string {
	parts := []string{string(p.os), p.arch}

	if p.environment != EnvNative {
		parts = append(parts, string(p.environment))
	}
	if p.distroName != "" {
		parts = append(parts, p.distroName)
	} else if p.distroID != "" {
		parts = append(parts, p.distroID)
	}

	return strings.Join(parts, "/")
}

// New creates a Platform with specified values.
func New(os OS, arch string, env Environment) *Platform {
	return &Platform{
		os:          os,
		arch:        arch,
		environment: env,
		interop:     os == OSWindows,
	}
}

// NewWSL creates a WSL platform on an Ubuntu distribution.
func NewWSL(version Environment, distro string, interop bool) *Platform {
	return &Platform{
		os:          OSLinux,
		arch:        "amd64",
		environment: version,
		distroID:    "ubuntu",
		distroName:  distro,
		windowsPath: "/mnt/c",
		interop:     interop,
	}
}
