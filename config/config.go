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

package config

import (
	"os"
	"path/filepath"

	"github.com/kaiachai/hydration-node/core/broker"
	"github.com/kaiachai/hydration-node/core/collateral"
	"github.com/kaiachai/hydration-node/core/exchange"
	"github.com/kaiachai/hydration-node/core/pricing"
	"github.com/kaiachai/hydration-node/core/referral"
	"github.com/kaiachai/hydration-node/logging"
	"github.com/kaiachai/hydration-node/metrics"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config ties together the configuration of every engine in the node.
type Config struct {
	Logging    logging.Config    `group:"Logging" namespace:"logging"`
	Broker     broker.Config     `group:"Broker" namespace:"broker"`
	Collateral collateral.Config `group:"Collateral" namespace:"collateral"`
	Pricing    pricing.Config    `group:"Pricing" namespace:"pricing"`
	Exchange   exchange.Config   `group:"Exchange" namespace:"exchange"`
	Referral   referral.Config   `group:"Referral" namespace:"referral"`
	Metrics    metrics.Config    `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns the default configuration of every engine, as
// specified at the per package config level.
func NewDefaultConfig() Config {
	return Config{
		Logging:    logging.NewDefaultConfig(),
		Broker:     broker.NewDefaultConfig(),
		Collateral: collateral.NewDefaultConfig(),
		Pricing:    pricing.NewDefaultConfig(),
		Exchange:   exchange.NewDefaultConfig(),
		Referral:   referral.NewDefaultConfig(),
		Metrics:    metrics.NewDefaultConfig(),
	}
}

// Read loads the configuration file found under rootPath on top of the
// defaults, so a partial file is enough.
func Read(rootPath string) (*Config, error) {
	path := filepath.Join(rootPath, configFileName)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read the configuration at %s", path)
	}
	cfg := NewDefaultConfig()
	if _, err := toml.Decode(string(buf), &cfg); err != nil {
		return nil, errors.Wrapf(err, "could not parse the configuration at %s", path)
	}
	return &cfg, nil
}

// Write saves the configuration under rootPath, creating the directory
// when needed.
func Write(rootPath string, cfg Config) error {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return errors.Wrapf(err, "could not create the configuration directory %s", rootPath)
	}

	path := filepath.Join(rootPath, configFileName)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create the configuration at %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrapf(err, "could not write the configuration at %s", path)
	}
	return nil
}

// Exists reports whether a configuration file is present under rootPath.
func Exists(rootPath string) bool {
	_, err := os.Stat(filepath.Join(rootPath, configFileName))
	return err == nil
}
