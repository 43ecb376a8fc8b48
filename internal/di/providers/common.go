// Package providers contains dependency injection providers for the
// OpenShelf server.
package providers

import "time"

// shutdownTimeout bounds graceful shutdown of long-running components.
const shutdownTimeout = 10 * time.Second
