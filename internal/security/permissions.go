// internal/security/permissions.go
// Rules directory permission checks.
package security

import (
	"fmt"
	"os"
)

// ValidateDirectoryPermissions checks that a directory has safe permissions.
// Returns an error if the directory is world-writable or group-writable.
func ValidateDirectoryPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking directory permissions: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	mode := info.Mode().Perm()
	if mode&0002 != 0 {
		return fmt.Errorf("directory %s is world-writable (mode %04o), expected 0700 or 0755", path, mode)
	}
	if mode&0020 != 0 {
		return fmt.Errorf("directory %s is group-writable (mode %04o), expected 0700 or 0755", path, mode)
	}

	return nil
}

// ValidateFilePermissions checks that a rule file is a regular file that
// only its owner can write. Rule files decide what the engine reacts to.
func ValidateFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking file permissions: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	mode := info.Mode().Perm()
	if mode&0022 != 0 {
		return fmt.Errorf("rule file %s is writable by group or others (mode %04o), expected 0600 or 0644", path, mode)
	}

	return nil
}
