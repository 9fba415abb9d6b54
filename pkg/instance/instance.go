package instance

import "os"

// GetID identifies this process in log fields and lock ownership. Deploys
// set INSTANCE_ID; outside a managed environment the hostname stands in.
func GetID() string {
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
