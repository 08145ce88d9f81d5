// Command snmix builds synthetic supernova plus host-galaxy composite
// spectra from SNID templates and galaxy spectra.
//
// Usage:
//
//	snmix [--config file.yaml] <command> [flags]
//
// Commands:
//
//	ages     list the ages stored in a SNID template
//	combine  write one composite spectrum as CSV
//	batch    combine a template with every configured galaxy type
//
// Every flag can also be set in the config file or through an environment
// variable with the SNMIX_ prefix, for example SNMIX_GRID_SIZE=2048.
//
// Examples:
//
//	snmix ages sn2001br.lnw
//	snmix combine --template sn2001br.lnw --galaxy gal/Sa --age 3 --sn-coeff 0.3 --galaxy-coeff 0.7
//	snmix batch --config snmix.yaml --workers 4 --keep-going
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
