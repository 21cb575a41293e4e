package main

import (
	"github.com/trezcool/tuition/storage/database"
)

func (cli *commandLine) migrate(args []string) error {
	if err := database.SetupMigrations(); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db, "migrations", args[1:]...)
}
