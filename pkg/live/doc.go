// Package live serves a compiled view over HTTP and pushes binding patches
// to browsers over WebSocket.
//
// Routes:
//
//	GET  /            rendered fragment plus the patch client script
//	GET  /ws          patch stream
//	GET  /data        snapshot of the data object as JSON
//	GET  /data/{key}  one value as JSON
//	PUT  /data/{key}  write a value (JSON body) through the VM
//	GET  /metrics     Prometheus exposition
//	GET  /healthz     liveness probe
//
// A PUT is a normal reactive write: every watcher of the key runs on the
// request goroutine and each resulting patch is broadcast before the
// response is written. All VM access is serialized by the server.
package live
