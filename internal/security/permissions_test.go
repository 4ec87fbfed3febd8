// internal/security/permissions_test.go
package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDirectoryPermissions_CorrectPerms(t *testing.T) {
	dir := t.TempDir()

	if err := os.Chmod(dir, 0700); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	err := ValidateDirectoryPermissions(dir)
	if err != nil {
		t.Errorf("expected no error for dir with 0700 perms, got: %v", err)
	}
}

func TestValidateDirectoryPermissions_Mode0755(t *testing.T) {
	dir := t.TempDir()

	if err := os.Chmod(dir, 0755); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	err := ValidateDirectoryPermissions(dir)
	if err != nil {
		t.Errorf("expected no error for dir with 0755 perms, got: %v", err)
	}
}

func TestValidateDirectoryPermissions_GroupWritable(t *testing.T) {
	dir := t.TempDir()

	if err := os.Chmod(dir, 0770); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	err := ValidateDirectoryPermissions(dir)
	if err == nil {
		t.Error("expected error for group-writable directory")
	}
}

func TestValidateDirectoryPermissions_WorldWritable(t *testing.T) {
	dir := t.TempDir()

	if err := os.Chmod(dir, 0777); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	err := ValidateDirectoryPermissions(dir)
	if err == nil {
		t.Error("expected error for world-writable directory")
	}
}

func TestValidateDirectoryPermissions_OtherWrite(t *testing.T) {
	dir := t.TempDir()

	if err := os.Chmod(dir, 0766); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}

	err := ValidateDirectoryPermissions(dir)
	if err == nil {
		t.Error("expected error for directory with other-write permission")
	}
}

func TestValidateDirectoryPermissions_NonexistentDir(t *testing.T) {
	err := ValidateDirectoryPermissions("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for nonexistent directory")
	}
}

func TestValidateFilePermissions_CorrectPerms(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "test-rule.yaml")

	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}

	err := ValidateFilePermissions(filePath)
	if err != nil {
		t.Errorf("expected no error for file with 0644 perms, got: %v", err)
	}
}

func TestValidateFilePermissions_WorldWritable(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "test-rule.yaml")

	if err := os.WriteFile(filePath, []byte("test"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(filePath, 0666); err != nil {
		t.Fatal(err)
	}

	err := ValidateFilePermissions(filePath)
	if err == nil {
		t.Error("expected error for world-writable file")
	}
}

func TestValidateFilePermissions_GroupWritable(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "test-rule.yaml")

	if err := os.WriteFile(filePath, []byte("test"), 0620); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(filePath, 0620); err != nil {
		t.Fatal(err)
	}

	err := ValidateFilePermissions(filePath)
	if err == nil {
		t.Error("expected error for group-writable file")
	}
}

func TestValidateFilePermissions_Directory(t *testing.T) {
	err := ValidateFilePermissions(t.TempDir())
	if err == nil {
		t.Error("expected error for a directory")
	}
}
