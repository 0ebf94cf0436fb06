//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed with its default configuration.
func (Run) Testbed() error {
	mg.Deps(Build.Engine)
	fmt.Println("Run testbed...")
	if _, err := executeCmd("bin/ose", withArgs("-config", "testbed/config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs every test with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Runs the tests of a single package, e.g. `mage test:pkg engine/scene`.
func (Test) Pkg(pkg string) error {
	_, err := executeCmd("go", withArgs("test", "-v", "./..."), withDir(pkg), withStream())
	return err
}
