package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const defaultSecretLen = 32

func main() {
	if err := run(os.Args[1:], os.Stdout, rand.Reader); err != nil {
		fmt.Fprintf(os.Stderr, "gensecret: %v\n", err)
		os.Exit(1)
	}
}

// Print fresh random secrets
// With --env prints both signing keys as .env lines, ready to append to the file
func run(args []string, out io.Writer, random io.Reader) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	size := fs.IntP("bytes", "n", defaultSecretLen, "Secret length in bytes")
	asEnv := fs.Bool("env", false, "Print SECRET_KEY and REFRESH_SECRET_KEY lines")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size < 16 {
		return errors.New("secret shorter than 16 bytes is too weak")
	}

	secret := func() (string, error) {
		b := make([]byte, *size)
		if _, err := io.ReadFull(random, b); err != nil {
			return "", fmt.Errorf("error while generating secret key: %w", err)
		}
		return hex.EncodeToString(b), nil
	}

	if !*asEnv {
		s, err := secret()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, s)
		return err
	}

	for _, key := range []string{"SECRET_KEY", "REFRESH_SECRET_KEY"} {
		s, err := secret()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "%s=%s\n", key, s); err != nil {
			return err
		}
	}

	return nil
}
