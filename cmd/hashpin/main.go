// Command hashpin prints the bcrypt hash of an admin PIN for ADMIN_PIN_HASH.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/msmolicek/App-UZama-Grill-Secured/internal/auth"
)

func main() {
	pin := flag.String("pin", "", "admin PIN; read from stdin when empty")
	flag.Parse()

	if *pin == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "failed to read PIN:", err)
			os.Exit(1)
		}
		*pin = strings.TrimSpace(line)
	}

	hash, err := auth.HashPIN(*pin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
