// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"

	"github.com/kaiachai/hydration-node/config"
	"github.com/kaiachai/hydration-node/logging"

	"github.com/jessevdk/go-flags"
)

type InitCmd struct {
	Home  string `long:"home" description:"Path of the root directory in which the configuration is located" default:"."`
	Force bool   `short:"f" long:"force" description:"Overwrite an existing configuration at the specified path"`
}

var initCmd InitCmd

func (opts *InitCmd) Execute(_ []string) error {
	logger := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer logger.AtExit()

	if config.Exists(opts.Home) && !opts.Force {
		return fmt.Errorf("configuration already exists at `%s`, remove it first or re-run using -f", opts.Home)
	}

	if err := config.Write(opts.Home, config.NewDefaultConfig()); err != nil {
		return fmt.Errorf("couldn't save configuration file: %w", err)
	}

	logger.Info("configuration generated successfully",
		logging.String("path", opts.Home),
	)
	return nil
}

func Init(_ context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}

	short := "Initializes a hydration node"
	long := "Generate the minimal configuration required for a hydration node to start"

	_, err := parser.AddCommand("init", short, long, &initCmd)
	return err
}
