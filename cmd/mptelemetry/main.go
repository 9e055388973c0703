// Command mptelemetry tracks face, pose and hand landmarks and relays the
// resulting telemetry over WebSocket.
package main

func main() {
	Execute()
}
