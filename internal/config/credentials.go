package config

import (
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrMongoURINotFound is returned when ResolveMongoURI fails to find a
// connection string in any source.
var ErrMongoURINotFound = errors.New("mongo connection uri not found in flags/env/yaml or platform credential store")

// ResolveMongoURI returns a non-empty MongoDB connection string, checking
// the same layered set of sources regardless of where it ends up being set.
// Resolution order (first found wins):
//  1. Flag/YAML value stored in Config.MongoURI (populated by Load()),
//     unless it is DefaultMongoURI
//  2. Environment variable TMGMT_MONGO_URI
//  3. Environment variable MONGO_URI (common convention)
//  4. Platform-specific credential storage:
//     - macOS: Keychain (security command)
//     - Windows: Credential Manager (PowerShell Get-StoredCredential)
//     - Linux: secret-service (secret-tool or GNOME Keyring)
//  5. Config.MongoURI when it is DefaultMongoURI
//  6. If nothing found, returns ErrMongoURINotFound
func (c *Config) ResolveMongoURI() (string, error) {
	if c != nil && c.MongoURI != "" && c.MongoURI != DefaultMongoURI {
		return c.MongoURI, nil
	}

	if env := os.Getenv("TMGMT_MONGO_URI"); env != "" {
		return env, nil
	}
	if env := os.Getenv("MONGO_URI"); env != "" {
		return env, nil
	}

	if uri := getCredentialFromPlatformStore("mongo-uri"); uri != "" {
		return uri, nil
	}

	if c != nil && c.MongoURI != "" {
		return c.MongoURI, nil
	}

	return "", ErrMongoURINotFound
}

// getCredentialFromPlatformStore retrieves credentials from platform-specific secure storage.
func getCredentialFromPlatformStore(service string) string {
	switch runtime.GOOS {
	case "darwin":
		return getCredentialFromMacOSKeychain(service)
	case "windows":
		return getCredentialFromWindowsCredentialManager(service)
	case "linux":
		return getCredentialFromLinuxSecretService(service)
	default:
		return ""
	}
}

// getCredentialFromMacOSKeychain retrieves credentials from macOS Keychain.
func getCredentialFromMacOSKeychain(service string) string {
	cmd := exec.Command("security", "find-generic-password", "-a", "tmanagement", "-s", service, "-w")
	out, err := cmd.Output()
	if err == nil {
		credential := strings.TrimSpace(string(out))
		if credential != "" {
			return credential
		}
	}
	return ""
}

// getCredentialFromWindowsCredentialManager retrieves credentials from Windows Credential Manager.
func getCredentialFromWindowsCredentialManager(service string) string {
	target := "tmanagement:" + service
	cmd := exec.Command("powershell", "-Command",
		"try { $cred = Get-StoredCredential -Target '"+target+"' -ErrorAction Stop; "+
			"[Runtime.InteropServices.Marshal]::PtrToStringAuto([Runtime.InteropServices.Marshal]::SecureStringToBSTR($cred.Password)) "+
			"} catch { exit 1 }")

	out, err := cmd.Output()
	if err == nil {
		credential := strings.TrimSpace(string(out))
		if credential != "" {
			return credential
		}
	}

	return ""
}

// getCredentialFromLinuxSecretService retrieves credentials from Linux secret-service (libsecret).
func getCredentialFromLinuxSecretService(service string) string {
	cmd := exec.Command("secret-tool", "lookup", "application", "tmanagement", "service", service)
	out, err := cmd.Output()
	if err == nil {
		credential := strings.TrimSpace(string(out))
		if credential != "" {
			return credential
		}
	}

	cmd = exec.Command("gnome-keyring", "get", "tmanagement-"+service)
	out, err = cmd.Output()
	if err == nil {
		credential := strings.TrimSpace(string(out))
		if credential != "" {
			return credential
		}
	}

	return ""
}
