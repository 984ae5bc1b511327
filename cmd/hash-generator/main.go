// Command hash-generator produces the bcrypt password hash used for the
// auth.password_hash configuration value.
//
// Usage:
//
//	hash-generator <password>
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator <password>")
		os.Exit(2)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}
