package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	testDir := "/data/test_dir"

	// Directory should not exist initially
	if _, err := fs.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(fs, testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := fs.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(fs, testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}

	if filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected directory to end with 'Downloads', got: %s", downloadsDir)
	}
}

func TestOpenFileInManager_NonExistentFile(t *testing.T) {
	nonExistentFile := filepath.Join(t.TempDir(), "nonexistent.txt")

	err := OpenFileInManager(nonExistentFile)
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}

	if !strings.Contains(err.Error(), "file does not exist:") {
		t.Errorf("Error message should contain 'file does not exist:', got: %v", err)
	}
}

func TestValidateDownloadPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/downloads", DefaultDirPermissions); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/downloads/file.txt", []byte("x"), DefaultFilePermissions); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		path       string
		createDirs bool
		wantErr    error
	}{
		{"relative", "test.txt", false, ErrRelativePath},
		{"existing parent", "/downloads/a.txt", false, nil},
		{"missing parent", "/missing/a.txt", false, ErrMissingParent},
		{"parent is a file", "/downloads/file.txt/a.txt", false, ErrMissingParent},
		{"created parent", "/created/deep/a.txt", true, nil},
	}

	for _, test := range tests {
		got, err := ValidateDownloadPath(fs, test.path, test.createDirs)
		if test.wantErr != nil {
			if !errors.Is(err, test.wantErr) {
				t.Errorf("%s: expected %v, got %v", test.name, test.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}
		if got != filepath.Clean(test.path) {
			t.Errorf("%s: expected %s, got %s", test.name, test.path, got)
		}
	}

	if _, err := fs.Stat("/created/deep"); err != nil {
		t.Errorf("Parent directory was not created: %v", err)
	}
}

func TestGenerateUniqueFilename(t *testing.T) {
	fs := afero.NewMemMapFs()
	base := "/downloads/test.txt"

	if got := GenerateUniqueFilename(fs, base, 1700000000); got != base {
		t.Errorf("Free path should be returned unchanged, got %s", got)
	}

	afero.WriteFile(fs, base, []byte("1"), DefaultFilePermissions)
	if got := GenerateUniqueFilename(fs, base, 1700000000); got != "/downloads/test (1).txt" {
		t.Errorf("Expected first numbered variant, got %s", got)
	}

	afero.WriteFile(fs, "/downloads/test (1).txt", []byte("2"), DefaultFilePermissions)
	if got := GenerateUniqueFilename(fs, base, 1700000000); got != "/downloads/test (2).txt" {
		t.Errorf("Expected second numbered variant, got %s", got)
	}
}

func TestGenerateUniqueFilename_NoExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/downloads/test", []byte("1"), DefaultFilePermissions)

	if got := GenerateUniqueFilename(fs, "/downloads/test", 1); got != "/downloads/test (1)" {
		t.Errorf("Expected 'test (1)', got %s", got)
	}
}

func TestGenerateUniqueFilename_TimestampFallback(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/d/a.bin", nil, DefaultFilePermissions)
	for i := 1; i <= MaxNumberedVariants; i++ {
		afero.WriteFile(fs, fmt.Sprintf("/d/a (%d).bin", i), nil, DefaultFilePermissions)
	}

	if got := GenerateUniqueFilename(fs, "/d/a.bin", 1700000000); got != "/d/a-1700000000.bin" {
		t.Errorf("Expected timestamp fallback, got %s", got)
	}
}

func TestChecksum(t *testing.T) {
	// sha256("hello")
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	if got := Checksum([]byte("hello")); got != want {
		t.Errorf("Checksum() = %s, expected %s", got, want)
	}

	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/f", []byte("hello"), DefaultFilePermissions)
	got, err := FileChecksum(fs, "/f")
	if err != nil {
		t.Fatalf("FileChecksum() error: %v", err)
	}
	if got != want {
		t.Errorf("FileChecksum() = %s, expected %s", got, want)
	}

	if _, err := FileChecksum(fs, "/missing"); err == nil {
		t.Error("Expected error for missing file")
	}
}
