package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okapitech/ratiba/core/provider"
	inmemdb "github.com/okapitech/ratiba/storage/database/inmem"
)

func setup(t *testing.T) (*commandLine, provider.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	provRepo := inmemdb.NewProviderRepository(db)
	return &commandLine{provRepo: provRepo}, provRepo
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	migrationRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "lesson", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					assert.Equal(t, tt.wantErr, err)
				} else if tt.wantErrStr != "" {
					assert.EqualError(t, err, tt.wantErrStr)
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addProvider(t *testing.T) {
	cli, provRepo := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addprovider"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"addprovider", "-name", "Jo Acho"}, wantErr: errHelp},
		{name: "bad role", args: []string{"addprovider", "-name", "Jo Acho", "-email", "jo@test.cd", "-role", "lol"}, wantErr: errHelp},
		{name: "create", args: []string{"addprovider", "-name", "Jo Acho", "-email", "jo@test.cd", "-role", "sea", "-school", "sch-1"}},
		{name: "update existing", args: []string{"addprovider", "-name", "Jo B. Acho", "-email", "JO@test.cd", "-role", "specialist"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			if assert.NoError(t, err) {
				prov, err := provRepo.GetProviderByEmail(context.Background(), "jo@test.cd")
				if assert.NoError(t, err) {
					assert.NotEmpty(t, prov.ID)
					assert.True(t, *prov.IsActive)
				}
			}
		})
	}

	// the update must not have created a second provider
	provs, err := provRepo.QueryAllProviders(context.Background())
	if assert.NoError(t, err) && assert.Len(t, provs, 1) {
		assert.Equal(t, "Jo B. Acho", provs[0].Name)
		assert.Equal(t, provider.RoleSpecialist, provs[0].Role)
	}
}

func Test_commandLine_makeToken(t *testing.T) {
	cli, provRepo := setup(t)

	_, err := provRepo.CreateProvider(context.Background(), provider.Provider{
		Name:  "Jo Acho",
		Email: "jo@test.cd",
		Role:  provider.RoleSpecialist,
	})
	if err != nil {
		t.Fatalf("creating provider: %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"maketoken"}, wantErr: errHelp},
		{name: "provider not found", args: []string{"maketoken", "-email", "lol@test.cd"}, wantErr: provider.ErrNotFound},
		{name: "token generated", args: []string{"maketoken", "-email", "jo@test.cd"}},
		{name: "email is case-insensitive", args: []string{"maketoken", "-email", "JO@test.cd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
