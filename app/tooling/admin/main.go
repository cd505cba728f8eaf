// This program performs administrative tasks against the node the gateway
// talks to.
package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/btcgateway/app/tooling/admin/cmd"
	"github.com/ardanlabs/btcgateway/foundation/logger"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger. Command output goes to stdout so
	// the logs are kept on stderr.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cmd.Execute(build, log, os.Args[1:]); err != nil {
		log.Errorw("admin", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}
