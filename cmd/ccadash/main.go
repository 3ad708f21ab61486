package main

import (
	"context"
	"os"

	// CA roots for images built without a system certificate store
	_ "golang.org/x/crypto/x509roots/fallback"

	"github.com/pasc-cca/ccadash/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
