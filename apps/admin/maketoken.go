package main

import (
	"context"
	"fmt"

	echoapi "github.com/okapitech/ratiba/apps/api/echo"
	"github.com/okapitech/ratiba/core"
)

// makeToken prints a signed API token for the provider with the given email.
func (cli *commandLine) makeToken(email string) error {
	prov, err := cli.provRepo.GetProviderByEmail(context.Background(), core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	token, err := echoapi.GenerateToken(echoapi.GetProviderClaims(prov))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
