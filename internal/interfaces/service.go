package interfaces

// Service is an operation surface exposed by the daemon. Start returns once
// the surface is listening, Stop waits for in-flight requests.
type Service interface {
	Start() error
	Stop()
}
