package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/okapitech/ratiba/core/provider"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sql.DB
	provRepo provider.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a database migration command (up, down, status, ...)")
	fmt.Println("  addprovider -name NAME -email EMAIL [-role ROLE] [-school ID] [-district ID] [-state ID] - update or create a provider")
	fmt.Println("  maketoken -email EMAIL - generate an API token for a provider")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addProviderCmd := flag.NewFlagSet("addprovider", flag.ExitOnError)
	addProviderName := addProviderCmd.String("name", "", "The provider's full name.")
	addProviderEmail := addProviderCmd.String("email", "", "The provider's email.")
	addProviderRole := addProviderCmd.String("role", provider.RoleSpecialist, "The provider's role: admin, specialist or sea.")
	addProviderSchool := addProviderCmd.String("school", "", "The provider's school ID.")
	addProviderDistrict := addProviderCmd.String("district", "", "The provider's district ID.")
	addProviderState := addProviderCmd.String("state", "", "The provider's state ID.")

	makeTokenCmd := flag.NewFlagSet("maketoken", flag.ExitOnError)
	makeTokenEmail := makeTokenCmd.String("email", "", "The provider's email.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addprovider":
		if err := addProviderCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addProviderName == "" || *addProviderEmail == "" {
			addProviderCmd.Usage()
			return errHelp
		}
		if !validRole(*addProviderRole) {
			addProviderCmd.Usage()
			return errHelp
		}
		return cli.addProvider(
			*addProviderName, *addProviderEmail, *addProviderRole,
			*addProviderSchool, *addProviderDistrict, *addProviderState,
		)
	case "maketoken":
		if err := makeTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *makeTokenEmail == "" {
			makeTokenCmd.Usage()
			return errHelp
		}
		return cli.makeToken(*makeTokenEmail)
	default:
		cli.printUsage()
		return errHelp
	}
}

func validRole(role string) bool {
	for _, r := range provider.AllRoles {
		if role == r {
			return true
		}
	}
	return false
}
