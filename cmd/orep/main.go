// Command orep wires a local client and server replica over an integer counter,
// each replica with its own copy. It exists to demonstrate the callback contracts; the library itself
// has no command line surface.
package main

import (
	"flag"
	"fmt"
	"log"
)

const usage = `usage: orep <command> [<args>]

Commands
   demo        Run the scripted counter round trips and print both replicas
   repl        Run an interactive counter client, against an in-process server
               or a remote one: orep repl [ws://host:port/hub]
   serve       Host a counter server replica: orep serve [-addr=:7580]
   help        Display this message
`

func main() {
	flag.Parse()
	log.SetFlags(0)
	args := flag.Args()
	if len(args) == 0 {
		log.Printf("missing command\n\n")
		fmt.Print(usage)
		return
	}
	var err error
	switch cmd := args[0]; cmd {
	case "demo":
		err = demo()
	case "repl":
		err = repl(args[1:])
	case "serve":
		err = serve(args[1:])
	case "help":
		fmt.Print(usage)
	default:
		log.Printf("unknown command: %s\n\n", cmd)
		fmt.Print(usage)
	}
	if err != nil {
		log.Fatalf("%s error: %+v\n", args[0], err)
	}
}
