// Command memctl is a thin CLI host shim over the memory lifecycle
// engine. It demonstrates the embeddable API end to end; it is not
// itself part of the engine's public contract.
package main

func main() {
	Execute()
}
