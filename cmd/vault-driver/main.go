package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/vault-driver/pkg/app"
)

func main() {
	if err := app.Run(&vaultDriverApp{}, "vault_driver"); err != nil {
		logrus.StandardLogger().WithError(err).Error("vault driver failed")
		os.Exit(1)
	}
}
