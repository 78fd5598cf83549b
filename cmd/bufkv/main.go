// Command bufkv is the CLI entry point for the buffered, cached key-value
// wrapper implemented in lib/kv.
package main

import "github.com/ValentinKolb/bufkv/cmd"

func main() {
	cmd.Execute()
}
