package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
	CmdCommand      = "cmd"
	StartCommand    = "start"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
	WindowsCmdFlag     = "/c"
)

// MaxNumberedVariants is how many "name (i).ext" candidates are tried before
// falling back to a timestamp suffix.
const MaxNumberedVariants = 999

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// Path errors
var (
	ErrRelativePath  = errors.New("path must be absolute")
	ErrMissingParent = errors.New("parent directory does not exist")
)

// OpenFileInManager opens the file in the system file manager and highlights it
func OpenFileInManager(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file does not exist: %v", err)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam, absPath).Run()
	case OSLinux:
		return openFileInManagerLinux(absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openFileInManagerLinux opens directory containing file on Linux
// Note: File selection is not standardized on Linux, so we open the parent directory
func openFileInManagerLinux(filePath string) error {
	dir := filepath.Dir(filePath)

	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}

	return fmt.Errorf("no suitable file manager found")
}

// OpenFileWithDefaultApp opens the file with the default system application
func OpenFileWithDefaultApp(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, absPath).Run()
	case OSWindows:
		return exec.Command(CmdCommand, WindowsCmdFlag, StartCommand, "", absPath).Run()
	case OSLinux:
		return exec.Command(XDGOpenCommand, absPath).Run()
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(fs afero.Fs, dirPath string) error {
	if _, err := fs.Stat(dirPath); os.IsNotExist(err) {
		return fs.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, "Downloads"), nil
}

// ValidateDownloadPath checks that path is absolute and that its parent
// directory exists. With createDirs the parent is created instead.
func ValidateDownloadPath(fs afero.Fs, path string, createDirs bool) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s", ErrRelativePath, path)
	}
	path = filepath.Clean(path)

	parent := filepath.Dir(path)
	info, err := fs.Stat(parent)
	switch {
	case os.IsNotExist(err) && createDirs:
		if err := fs.MkdirAll(parent, DefaultDirPermissions); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", parent, err)
		}
	case os.IsNotExist(err):
		return "", fmt.Errorf("%w: %s", ErrMissingParent, parent)
	case err != nil:
		return "", fmt.Errorf("cannot access directory %s: %w", parent, err)
	case !info.IsDir():
		return "", fmt.Errorf("%w: %s is not a directory", ErrMissingParent, parent)
	}

	return path, nil
}

// GenerateUniqueFilename returns path itself when nothing exists there,
// otherwise the first free "name (i).ext" for i up to MaxNumberedVariants,
// and finally "name-<unix seconds>.ext".
func GenerateUniqueFilename(fs afero.Fs, path string, unixNow int64) string {
	if !exists(fs, path) {
		return path
	}

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	if stem == "" {
		// ".bashrc" style names have no extension
		stem, ext = ext, ""
	}

	for i := 1; i <= MaxNumberedVariants; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if !exists(fs, candidate) {
			return candidate
		}
	}

	return filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, unixNow, ext))
}

func exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
