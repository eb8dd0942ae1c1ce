package sessionstore

// Backend stores the app session cookie between invocations. The access token itself is never
// stored; it is fetched from the app with this cookie and kept in memory.
type Backend interface {
	Get() (string, error)
	Set(value string) error
	Clear() error
}
