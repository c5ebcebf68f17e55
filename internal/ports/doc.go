// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Transport]: Delivers one serialized batch to the ingestion service
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//   - [ProcessLauncher]: Starts detached external processes
//   - [SpoolStateRepository]: Persists the read offset of a tailed spool file
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (net/http, goroutines, os/exec, the file system).
package ports
