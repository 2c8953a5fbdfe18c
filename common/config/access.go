package config

import (
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "transfer-repo.yaml"

// Load reads the configuration at the given path over top of the defaults, then applies
// environment overrides. A missing file is generated with the defaults. When the path is
// a directory, every file in it is loaded in name order.
func Load(configPath string) (*TransferRepoConfig, error) {
	c := NewDefaultConfig()

	// Write a default config if the one given doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println("Generating new configuration...")
		if err = writeDefault(configPath, c); err != nil {
			return nil, err
		}
	}

	// Get new info about the possible directory after creating
	info, err := os.Stat(configPath)
	if err != nil {
		return nil, err
	}

	pathsOrdered := make([]string, 0)
	if info.IsDir() {
		logrus.Info("Config is a directory - loading all files over top of each other")

		files, err := os.ReadDir(configPath)
		if err != nil {
			return nil, err
		}

		for _, f := range files {
			if f.IsDir() {
				continue
			}
			pathsOrdered = append(pathsOrdered, path.Join(configPath, f.Name()))
		}

		sort.Strings(pathsOrdered)
	} else {
		pathsOrdered = append(pathsOrdered, configPath)
	}

	for _, p := range pathsOrdered {
		logrus.Info("Loading config file: ", p)
		buffer, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if err = yaml.Unmarshal(buffer, c); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	ApplyEnvironment(c, os.LookupEnv)
	return c, nil
}

func writeDefault(configPath string, c *TransferRepoConfig) error {
	configBytes, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	newFile, err := os.Create(configPath)
	if err != nil {
		return err
	}

	_, err = newFile.Write(configBytes)
	if err != nil {
		_ = newFile.Close()
		return err
	}

	return newFile.Close()
}
