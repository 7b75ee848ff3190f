package server

// Server is the lifecycle contract of the replication transport servers.
type Server interface {
	// RunServer serves sync traffic and blocks until a shutdown signal
	// arrives or the listener fails.
	RunServer()

	// Shutdown drains in-flight pull/push requests, then releases the
	// listener and associated resources.
	Shutdown()
}
