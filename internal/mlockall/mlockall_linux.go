// Package mlockall locks the process's memory pages in RAM on import, so
// that derived encryption keys and the password passed on the command line
// are never swapped to disk.
package mlockall

import (
	"log"
	"syscall"
)

func init() {
	if err := syscall.Mlockall(syscall.MCL_CURRENT | syscall.MCL_FUTURE); err != nil {
		log.Println(err)
		log.Fatal("can't lock memory pages in RAM, it's unsafe to run bigarchiver with a password")
	}
}
