package utils

import (
	"os"
	"os/user"
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	user, err := user.Current()
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", err
	}
	return hostname, nil
}

// Identity names whoever is running scrub. It prefers the git email and
// falls back to user@host.
func Identity(gitEmail string) string {
	if gitEmail != "" {
		return gitEmail
	}

	username, err := GetUsername()
	if err != nil || username == "" {
		username = "unknown"
	}
	hostname, err := GetHostname()
	if err != nil || hostname == "" {
		return username
	}
	return username + "@" + hostname
}
