package main

import (
	"github.com/okapitech/ratiba/storage/database"
)

var migrationRunFunc = database.RunMigrationCommand // mockable

func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return migrationRunFunc(args[0], cli.db, arguments...)
}
