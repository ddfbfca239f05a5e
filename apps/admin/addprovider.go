package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/okapitech/ratiba/core"
	"github.com/okapitech/ratiba/core/provider"
)

// addProvider updates or creates a provider.Provider
func (cli *commandLine) addProvider(name, email, role, schoolID, districtID, stateID string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	prov, err := cli.provRepo.GetProviderByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != provider.ErrNotFound {
			return err
		}
		prov = provider.Provider{
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
	}
	prov.Name = name
	prov.Role = role
	prov.SchoolID = null.NewString(schoolID, schoolID != "")
	prov.DistrictID = null.NewString(districtID, districtID != "")
	prov.StateID = null.NewString(stateID, stateID != "")
	active := true
	prov.IsActive = &active
	prov.UpdatedAt = time.Now().UTC()

	if prov.ID == "" {
		_, err = cli.provRepo.CreateProvider(ctx, prov)
	} else {
		_, err = cli.provRepo.UpdateProvider(ctx, prov)
	}
	return err
}
